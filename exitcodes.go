package magnolia

import "github.com/magnolia-os/magnolia-go/domain/entities"

// Exit statuses jobs and tools report.
const (
	ExitSuccess int32 = 0
	ExitFailure int32 = 1
	ExitUsage   int32 = 2
	ExitAbort         = entities.DefaultAbortStatus
)
