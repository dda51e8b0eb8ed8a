package mov

// testAtom serializes a minimal atom with the given type and payload.
func testAtom(kind string, payload []byte) []byte {
	buf := make([]byte, headerLen+len(payload))
	be.PutUint32(buf[0:4], uint32(headerLen+len(payload)))
	copy(buf[4:8], kind)
	copy(buf[8:], payload)
	return buf
}

// cat concatenates byte slices into a fresh buffer.
func cat(parts ...[]byte) []byte {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}
