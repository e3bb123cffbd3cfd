// Package entities provides the core domain types of the Magnolia job runtime.
// These are plain values shared by the job-side packages, the host adapters
// and the simulator: error register snapshots, host-defined open flags,
// allocation layouts, fault records and the host profile that ties the
// numeric host contract together.
package entities
