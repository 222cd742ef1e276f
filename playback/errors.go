package playback

import "errors"

var errNotPlaying = errors.New("Play must be called before Render")
