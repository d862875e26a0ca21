package local

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
)

// table describes the constraints the hosted schema enforces for one table
type table struct {
	unique    [][]string // unique column sets
	createdAt string     // column defaulted to now() on insert
	updatedAt string     // column set to now() on every write
	check     func(persistence.Row) error
}

var schema = map[string]table{
	domain.TableWatchlist: {
		unique:    [][]string{{"user_id", "item_type", "item_id"}},
		createdAt: "created_at",
	},
	domain.TableCollections: {
		createdAt: "created_at",
	},
	domain.TableCollectionItems: {
		unique:    [][]string{{"collection_id", "item_type", "item_id"}},
		createdAt: "added_at",
	},
	domain.TableReviews: {
		unique:    [][]string{{"user_id", "item_type", "item_id"}},
		createdAt: "created_at",
		updatedAt: "updated_at",
		check:     checkRating,
	},
}

func lookupTable(name string) (table, error) {
	t, ok := schema[name]
	if !ok {
		return table{}, fmt.Errorf("%w: unknown table %q", domain.ErrInvalidInput, name)
	}
	return t, nil
}

func checkRating(row persistence.Row) error {
	rating, err := strconv.ParseFloat(fmt.Sprint(row["rating"]), 64)
	if err != nil || rating < 1 || rating > 10 {
		return fmt.Errorf("%w: rating must be between 1 and 10", domain.ErrInvalidInput)
	}
	return nil
}

// uniqueKey renders the values of cols as a comparable key. ok is false when
// any column is missing, since NULLs never collide.
func uniqueKey(row persistence.Row, cols []string) (string, bool) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v, present := row[c]
		if !present || v == nil {
			return "", false
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "\x00"), true
}

// missingTime reports whether a timestamp column holds no usable value
func missingTime(v any) bool {
	s, ok := v.(string)
	return v == nil || (ok && (s == "" || strings.HasPrefix(s, "0001-01-01")))
}
