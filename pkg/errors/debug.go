package errors

import "errors"

// DumpInfo flattens an error chain for structured logging.
type DumpInfo struct {
	TopMessage string
	Code       string
	Chain      []string
}

// Dump walks the wrapped chain so log lines carry the full causal path.
func Dump(err error) DumpInfo {
	info := DumpInfo{}
	if err == nil {
		return info
	}

	info.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		info.Code = string(typed.Code())
	}

	for current := err; current != nil; current = errors.Unwrap(current) {
		info.Chain = append(info.Chain, current.Error())
	}
	return info
}
