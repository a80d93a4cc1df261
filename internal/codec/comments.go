package codec

// StripComments removes //-line and /* block */ comments from a JSON
// document, leaving string literals intact. Comment bytes are replaced with
// spaces (newlines preserved) so parse error positions still line up with the
// original file.
func StripComments(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	const (
		stateCode = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateCode
	for i := 0; i < len(out); i++ {
		ch := out[i]
		switch state {
		case stateCode:
			switch {
			case ch == '"':
				state = stateString
			case ch == '/' && i+1 < len(out) && out[i+1] == '/':
				state = stateLineComment
				out[i] = ' '
			case ch == '/' && i+1 < len(out) && out[i+1] == '*':
				state = stateBlockComment
				out[i] = ' '
			}
		case stateString:
			if ch == '\\' {
				i++ // skip escaped character
			} else if ch == '"' {
				state = stateCode
			}
		case stateLineComment:
			if ch == '\n' {
				state = stateCode
			} else {
				out[i] = ' '
			}
		case stateBlockComment:
			if ch == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = stateCode
			} else if ch != '\n' {
				out[i] = ' '
			}
		}
	}

	return out
}
