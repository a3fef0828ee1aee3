package display

import "strconv"

// appendPadded appends v in decimal, right justified in a field of width
// characters. Values wider than the field are not truncated; a uint16
// never needs more than 5 characters.
func appendPadded(dst []byte, v uint16, width int) []byte {
	start := len(dst)
	dst = strconv.AppendUint(dst, uint64(v), 10)
	n := len(dst) - start
	if n >= width {
		return dst
	}
	pad := width - n
	for i := 0; i < pad; i++ {
		dst = append(dst, ' ')
	}
	copy(dst[start+pad:], dst[start:start+n])
	for i := start; i < start+pad; i++ {
		dst[i] = ' '
	}
	return dst
}
