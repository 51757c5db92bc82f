package lfs

import "strings"

// idPrefix introduces the third field of a lock listing line.
const idPrefix = "ID:"

// ParsedLock is one entry parsed from lock listing output.
type ParsedLock struct {
	Path string
	User string
	ID   string
}

// ParseLockLine parses one lock listing line of the shape
//
//	<path>\t<user-field>\tID:<id>
//
// where <user-field> is either a bare identifier or a display name followed
// by a parenthesized address, in which case only the address local part is
// kept. Lines not matching the shape report ok=false; callers drop them as
// noise rather than failing the refresh.
func ParseLockLine(line string) (ParsedLock, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return ParsedLock{}, false
	}

	path := strings.TrimSpace(fields[0])
	userField := strings.TrimSpace(fields[1])
	idField := strings.TrimSpace(fields[2])

	if path == "" {
		return ParsedLock{}, false
	}

	rawID, hasPrefix := strings.CutPrefix(idField, idPrefix)
	if !hasPrefix {
		return ParsedLock{}, false
	}
	id := strings.TrimSpace(rawID)
	if id == "" {
		return ParsedLock{}, false
	}

	return ParsedLock{
		Path: path,
		User: parseUser(userField),
		ID:   id,
	}, true
}

// parseUser reduces "Display Name (local@domain)" to "local". A bare token,
// or a parenthesized field without a usable address, passes through whole.
func parseUser(field string) string {
	start := strings.LastIndex(field, "(")
	end := strings.LastIndex(field, ")")
	if start >= 0 && end > start {
		inside := field[start+1 : end]
		if at := strings.Index(inside, "@"); at > 0 {
			return inside[:at]
		}
	}
	return field
}
