package snapshot

import "strconv"

// CategoryRecord is one category of one country on one run date.
type CategoryRecord struct {
	ID           string
	Title        string
	Assignable   bool
	Country      string
	CategoryDate string
}

// Row renders the record in CategoryColumns order.
func (r CategoryRecord) Row() []string {
	return []string{
		r.ID,
		r.Title,
		strconv.FormatBool(r.Assignable),
		r.Country,
		r.CategoryDate,
	}
}

// VideoRecord is one trending video of one country on one run date.
// CommentsDisabled and RatingsDisabled are inferred from missing counters.
type VideoRecord struct {
	VideoID          string
	Title            string
	PublishedAt      string
	ChannelID        string
	ChannelTitle     string
	CategoryID       string
	Country          string
	TrendingDate     string
	Tags             string
	ViewCount        int64
	Likes            int64
	CommentCount     int64
	ThumbnailLink    string
	CommentsDisabled bool
	RatingsDisabled  bool
	Description      string
}

// Row renders the record in TrendingColumns order.
func (r VideoRecord) Row() []string {
	return []string{
		r.VideoID,
		r.Title,
		r.PublishedAt,
		r.ChannelID,
		r.ChannelTitle,
		r.CategoryID,
		r.Country,
		r.TrendingDate,
		r.Tags,
		strconv.FormatInt(r.ViewCount, 10),
		strconv.FormatInt(r.Likes, 10),
		strconv.FormatInt(r.CommentCount, 10),
		r.ThumbnailLink,
		strconv.FormatBool(r.CommentsDisabled),
		strconv.FormatBool(r.RatingsDisabled),
		r.Description,
	}
}
