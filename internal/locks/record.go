package locks

// Lock is one LFS lock as known locally. Records are created optimistically
// the instant a lock request is issued, or by the parser when a refresh
// line is processed; a refresh replaces the whole list, it never patches
// records field by field.
type Lock struct {
	// Path is the repo-relative file path. At most one record per path
	// exists in the store at any time.
	Path string `json:"path"`
	// ID is the server-assigned lock identifier, empty while creation is
	// pending.
	ID string `json:"id"`
	// User is the owner identity as reported by the server, or the local
	// user for an optimistic record.
	User string `json:"user"`
	// AssetGUID is the host-asset identifier derived from the path, empty
	// when unresolvable.
	AssetGUID string `json:"asset_guid,omitempty"`
	// Pending marks a record with a mutating command in flight. Pending
	// state dies with the process; it is never persisted.
	Pending bool `json:"-"`
}
