// Package wazero backs a simulated job address space with a WebAssembly
// linear memory managed by the wazero runtime.
//
// The memory lives in a tiny module built on the fly that does nothing but
// export a bounded memory. Addresses are 32-bit offsets into it and address
// 0 is reserved as null, as on the device. Growth is page-granular (64 KiB)
// and capped by the configured maximum.
//
// # Basic Usage
//
//	mem, err := wazero.NewMemory(ctx,
//	    wazero.WithInitialPages(4),
//	    wazero.WithMaxPages(64),
//	)
//	if err != nil {
//	    return err
//	}
//	defer mem.Close(ctx)
//
//	mem.WriteWord(1024, 0xdeadbeef)
package wazero
