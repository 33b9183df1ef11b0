package g711

// µ-law constants from the standard
const (
	// Bias is added to the sample magnitude before segment lookup.
	Bias = 0x84
	// Clip is the saturation ceiling for the biased magnitude. Samples at or
	// above it encode to the same byte as Clip itself.
	Clip = 32635
)

// decodeBias holds the linear value at the start of each exponent segment.
var decodeBias = [8]int16{0, 132, 396, 924, 1980, 4092, 8316, 16764}

// encodeSegments maps the biased magnitude's high byte to its 3-bit exponent
// segment. This is the literal table from the standard; it is the bit-exact
// interop contract with remote G.711 endpoints and must never be regenerated
// from a formula.
var encodeSegments = [256]byte{
	0, 0, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3, 3, 3,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
}

// DecodeULaw expands one 8-bit µ-law code to a signed 16-bit linear sample.
// Deterministic for all 256 codes; no error cases.
func DecodeULaw(code byte) int16 {
	code = ^code
	exponent := (code >> 4) & 0x07
	mantissa := code & 0x0F
	sample := decodeBias[exponent] + int16(mantissa)<<(exponent+3)
	if code&0x80 != 0 {
		return -sample
	}
	return sample
}

// EncodeULaw compresses one signed 16-bit linear sample to an 8-bit µ-law
// code. Loud samples saturate at Clip rather than erroring.
func EncodeULaw(sample int16) byte {
	s := int32(sample)
	sign := byte((s >> 8) & 0x80)
	if s < 0 {
		s = -s
	}
	s += Bias
	if s > Clip {
		s = Clip
	}
	exponent := encodeSegments[(s>>7)&0xFF]
	mantissa := byte(s>>(exponent+3)) & 0x0F
	return ^(sign | exponent<<4 | mantissa)
}

// DecodeULawBuffer expands a µ-law byte stream to linear samples, in order.
func DecodeULawBuffer(codes []byte) []int16 {
	samples := make([]int16, len(codes))
	for i, c := range codes {
		samples[i] = DecodeULaw(c)
	}
	return samples
}

// EncodeULawBuffer compresses linear samples to a µ-law byte stream, in order.
func EncodeULawBuffer(samples []int16) []byte {
	codes := make([]byte, len(samples))
	for i, s := range samples {
		codes[i] = EncodeULaw(s)
	}
	return codes
}

// ExponentSegment returns the 3-bit exponent segment a µ-law code belongs to.
func ExponentSegment(code byte) byte {
	return (^code >> 4) & 0x07
}
