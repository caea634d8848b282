package api

import (
	"time"

	"github.com/mybooks/mybooks-server/internal/domain"
	"github.com/mybooks/mybooks-server/internal/service"
)

const dateLayout = "2006-01-02"

// CatalogEntityResponse is an author, category or publisher.
type CatalogEntityResponse struct {
	ID        string  `json:"id" doc:"Entity ID"`
	Kind      string  `json:"kind" doc:"author, category or publisher"`
	Name      string  `json:"name" doc:"Unique name"`
	AddedBy   *string `json:"added_by" doc:"Profile ID of the creator, null when unknown"`
	AddedDate string  `json:"added_date" doc:"Date added (YYYY-MM-DD)"`
}

func optionalString(o domain.OptionalID) *string {
	if id, ok := o.Get(); ok {
		return &id
	}
	return nil
}

func toCatalogEntity(e *domain.CatalogEntity) CatalogEntityResponse {
	return CatalogEntityResponse{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Name:      e.Name,
		AddedBy:   optionalString(e.AddedBy),
		AddedDate: e.AddedDate.Format(dateLayout),
	}
}

func toCatalogEntities(es []*domain.CatalogEntity) []CatalogEntityResponse {
	out := make([]CatalogEntityResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toCatalogEntity(e))
	}
	return out
}

// BookResponse is a book with its related entities embedded.
type BookResponse struct {
	ID          string                  `json:"id" doc:"Book ID"`
	Title       string                  `json:"title" doc:"Title"`
	Year        *int                    `json:"year" doc:"Publication year"`
	Rank        *float64                `json:"rank" doc:"External rating"`
	Thumbnail   string                  `json:"thumbnail" doc:"Cover image URL"`
	Description string                  `json:"description" doc:"Description"`
	ISBN        string                  `json:"isbn" doc:"ISBN"`
	Authors     []CatalogEntityResponse `json:"authors" doc:"Authors"`
	Categories  []CatalogEntityResponse `json:"categories" doc:"Categories"`
	Publisher   *CatalogEntityResponse  `json:"publisher" doc:"Publisher, null when unset"`
	AddedBy     *string                 `json:"added_by" doc:"Profile ID of the creator, null when unknown"`
	AddedDate   string                  `json:"added_date" doc:"Date added (YYYY-MM-DD)"`
	VoteCount   int                     `json:"vote_count" doc:"Number of votes"`
	AverageVote *float64                `json:"average_vote" doc:"Mean vote value, null without votes"`
}

func toBook(b *domain.Book) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Year:        b.Year,
		Rank:        b.Rank,
		Thumbnail:   b.Thumbnail,
		Description: b.Description,
		ISBN:        b.ISBN,
		Authors:     toCatalogEntities(b.Authors),
		Categories:  toCatalogEntities(b.Categories),
		AddedBy:     optionalString(b.AddedBy),
		AddedDate:   b.AddedDate.Format(dateLayout),
		VoteCount:   b.VoteCount,
		AverageVote: b.AverageVote,
	}
	if b.Publisher != nil {
		p := toCatalogEntity(b.Publisher)
		resp.Publisher = &p
	}
	return resp
}

func toBooks(bs []*domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBook(b))
	}
	return out
}

// BookDetailResponse adds the caller's relation to the book.
type BookDetailResponse struct {
	BookResponse
	MyVote *VoteResponse `json:"my_vote" doc:"The caller's vote, null when none or anonymous"`
	Owned  bool          `json:"owned" doc:"Whether the caller owns the book"`
}

func toBookDetail(d *service.BookDetail) BookDetailResponse {
	resp := BookDetailResponse{BookResponse: toBook(d.Book), Owned: d.Owned}
	if d.MyVote != nil {
		v := toVote(d.MyVote)
		resp.MyVote = &v
	}
	return resp
}

// VoteResponse is one profile's rating of one book.
type VoteResponse struct {
	ID        string `json:"id" doc:"Vote ID"`
	ProfileID string `json:"profile_id" doc:"Voting profile"`
	BookID    string `json:"book_id" doc:"Rated book"`
	Value     int    `json:"value" doc:"Rating from 1 to 10"`
	Date      string `json:"date" doc:"Date of the vote (YYYY-MM-DD)"`
}

func toVote(v *domain.Vote) VoteResponse {
	return VoteResponse{
		ID:        v.ID,
		ProfileID: v.ProfileID,
		BookID:    v.BookID,
		Value:     v.Value,
		Date:      v.Date.Format(dateLayout),
	}
}

func toVotes(vs []*domain.Vote) []VoteResponse {
	out := make([]VoteResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, toVote(v))
	}
	return out
}

// ProfileResponse is a profile summary.
type ProfileResponse struct {
	ID        string    `json:"id" doc:"Profile ID (UUID)"`
	Name      string    `json:"name" doc:"Unique display name"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func toProfile(p *domain.Profile) ProfileResponse {
	return ProfileResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func toProfiles(ps []*domain.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProfile(p))
	}
	return out
}

// ProfileDetailResponse is a profile with its relations.
type ProfileDetailResponse struct {
	ProfileResponse
	OwnedBooks []BookResponse    `json:"owned_books" doc:"Books the profile owns"`
	Friends    []ProfileResponse `json:"friends" doc:"Friend profiles"`
	Votes      []VoteResponse    `json:"votes" doc:"Votes cast by the profile"`
	IsFriend   bool              `json:"is_friend" doc:"Whether the caller is a friend"`
	CanEdit    bool              `json:"can_edit" doc:"Whether the caller may edit this profile"`
}

func toProfileDetail(d *service.ProfileDetail) ProfileDetailResponse {
	return ProfileDetailResponse{
		ProfileResponse: toProfile(d.Profile),
		OwnedBooks:      toBooks(d.OwnedBooks),
		Friends:         toProfiles(d.Friends),
		Votes:           toVotes(d.Votes),
		IsFriend:        d.IsFriend,
		CanEdit:         d.CanEdit,
	}
}

// UserResponse is the authenticated user.
type UserResponse struct {
	ID          string     `json:"id" doc:"User ID"`
	Username    string     `json:"username" doc:"Login name"`
	Email       string     `json:"email,omitempty" doc:"Email address"`
	IsAdmin     bool       `json:"is_admin" doc:"Administrator flag"`
	CreatedAt   time.Time  `json:"created_at" doc:"Registration time"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" doc:"Last successful login"`
}

func toUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
