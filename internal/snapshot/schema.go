package snapshot

import (
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
)

// SchemaVersion identifies the trending table layout. Bump it whenever a
// column is added, removed, renamed, reordered or retyped.
const SchemaVersion = 1

// RowDateLayout formats trending_date and category_date.
const RowDateLayout = "2006-01-02"

// TrendingColumns is the header of every staged trending CSV, in table order.
var TrendingColumns = []string{
	"video_id",
	"title",
	"publishedAt",
	"channelId",
	"channelTitle",
	"categoryId",
	"country",
	"trending_date",
	"tags",
	"view_count",
	"likes",
	"comment_count",
	"thumbnail_link",
	"comments_disabled",
	"ratings_disabled",
	"description",
}

// CategoryColumns is the header of the category CSV.
var CategoryColumns = []string{"id", "title", "assignable", "country", "category_date"}

// TrendingSchema returns the arrow schema the trending CSVs are loaded with.
// Text columns are nullable=false: an absent text value is the empty string.
func TrendingSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, len(TrendingColumns))
	for _, name := range TrendingColumns {
		fields = append(fields, arrow.Field{Name: name, Type: trendingType(name)})
	}
	md := arrow.NewMetadata(
		[]string{"schema_version"},
		[]string{strconv.Itoa(SchemaVersion)},
	)
	return arrow.NewSchema(fields, &md)
}

func trendingType(column string) arrow.DataType {
	switch column {
	case "view_count", "likes", "comment_count":
		return arrow.PrimitiveTypes.Int64
	case "comments_disabled", "ratings_disabled":
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}
