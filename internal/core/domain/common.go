package domain

// VersionFields holds the bookkeeping columns shared by every version row.
// Exactly one version per identity has IsMostRecent set; version numbers
// increase by one per mutation with no gaps.
type VersionFields struct {
	VersionNumber int64  `json:"versionNumber" db:"version_number"`
	IsDeleted     bool   `json:"isDeleted" db:"is_deleted"`
	IsMostRecent  bool   `json:"isMostRecent" db:"is_most_recent"`
	ChangesetID   string `json:"changesetID" db:"changeset_id"`
}
