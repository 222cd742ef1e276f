package editor

import "errors"

var (
	errNoAudioLoaded = errors.New("no audio loaded")
	errNoteNotFound  = errors.New("note not found")
	errNothingToUndo = errors.New("nothing to undo")
	errNothingToRedo = errors.New("nothing to redo")
)
