package audiodecode

import "errors"

var (
	errInvalidWAV  = errors.New("not a valid WAV file")
	errEmptyFile   = errors.New("wav file contains no samples")
	errInvalidSeek = errors.New("negative seek position")
)
