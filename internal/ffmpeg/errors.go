package ffmpeg

import "regexp"

// Pre-compiled regexes for classifying ffmpeg stderr output into known
// rendition failure modes. Used to attach an operator hint to failed
// jobs; classification never changes control flow.
var (
	reEncoderInit = regexp.MustCompile(
		`(?i)Unknown encoder|` +
			`Error while opening encoder|` +
			`Cannot load|` +
			`Failed to initialise|` +
			`No capable devices found|` +
			`Device creation failed`)

	reInvalidInput = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`moov atom not found|` +
			`Could not find codec parameters|` +
			`Invalid argument`)

	reDiskFull = regexp.MustCompile(
		`No space left on device`)
)

// MatchEncoderInit reports whether stderr contains an encoder
// initialization failure.
func MatchEncoderInit(stderr string) bool {
	return reEncoderInit.MatchString(stderr)
}

// MatchInvalidInput reports whether stderr contains an input decode error.
func MatchInvalidInput(stderr string) bool {
	return reInvalidInput.MatchString(stderr)
}

// MatchDiskFull reports whether stderr contains an out-of-space error.
func MatchDiskFull(stderr string) bool {
	return reDiskFull.MatchString(stderr)
}

// FailureHint classifies a failed job's stderr into a short operator
// hint. Returns "" when no known pattern matches.
func FailureHint(stderr string) string {
	switch {
	case stderr == "":
		return ""
	case MatchDiskFull(stderr):
		return "output device is out of space"
	case MatchEncoderInit(stderr):
		return "encoder failed to initialize; consider force_software_encoding"
	case MatchInvalidInput(stderr):
		return "input stream could not be decoded"
	}
	return ""
}
