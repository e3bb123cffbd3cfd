package wazero

// memoryModule encodes a WebAssembly binary whose only content is an
// exported memory named "memory" with the given page limits.
func memoryModule(minPages, maxPages uint32) []byte {
	limits := []byte{0x01} // flags: max present
	limits = appendULEB(limits, minPages)
	limits = appendULEB(limits, maxPages)

	memSec := append([]byte{0x01}, limits...) // one memory

	name := "memory"
	expSec := []byte{0x01, byte(len(name))} // one export
	expSec = append(expSec, name...)
	expSec = append(expSec, 0x02, 0x00) // kind memory, index 0

	bin := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	bin = appendSection(bin, 5, memSec)
	bin = appendSection(bin, 7, expSec)
	return bin
}

func appendSection(dst []byte, id byte, body []byte) []byte {
	dst = append(dst, id)
	dst = appendULEB(dst, uint32(len(body))) //nolint:gosec // G115: sections are a few bytes
	return append(dst, body...)
}

func appendULEB(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}
