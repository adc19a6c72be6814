package widget

import "errors"

var (
	// ErrEmptyMessage is returned by Send when the text is blank.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNoFile is returned by Upload without a file name or reader.
	ErrNoFile = errors.New("no file selected")
	// ErrBusy is returned while another send or upload is in flight.
	ErrBusy = errors.New("a request is already in flight")
)
