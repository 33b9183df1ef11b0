// Package g711 implements the ITU-T G.711 µ-law codec used on the telephony
// leg of a call, plus the normalized-float conversions used by the audio
// graph. All functions are stateless, total over their input domains, and
// bit-exact against the standard tables.
package g711
