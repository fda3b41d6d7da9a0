package enums

type ListingStatus string

const (
	ListingStatusDraft     ListingStatus = "draft"
	ListingStatusQueued    ListingStatus = "queued"
	ListingStatusApproved  ListingStatus = "approved"
	ListingStatusRejected  ListingStatus = "rejected"
	ListingStatusPublished ListingStatus = "published"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusDraft, ListingStatusQueued, ListingStatusApproved, ListingStatusRejected, ListingStatusPublished:
		return true
	}
	return false
}
