package g711

// FloatToLinear converts a normalized float sample in [-1.0, 1.0] to 16-bit
// linear PCM. The two halves scale asymmetrically (32767 up, 32768 down) so
// that ±1.0 hit the exact ends of the int16 range without overflow.
func FloatToLinear(f float32) int16 {
	if f >= 0 {
		return int16(f * 32767)
	}
	return int16(f * 32768)
}

// LinearToFloat converts a 16-bit linear PCM sample to a normalized float,
// applying the inverse of the FloatToLinear scaling rule.
func LinearToFloat(s int16) float32 {
	if s >= 0 {
		return float32(s) / 32767
	}
	return float32(s) / 32768
}

// ULawToFloat expands a µ-law code straight to a normalized float sample.
func ULawToFloat(code byte) float32 {
	return LinearToFloat(DecodeULaw(code))
}

// FloatToULaw compresses a normalized float sample straight to a µ-law code.
func FloatToULaw(f float32) byte {
	return EncodeULaw(FloatToLinear(f))
}
