package services

import (
	"slices"

	"github.com/moviecollections/apiserver/types"
)

// FavouriteGenreCount is how many genres a collection summary reports.
const FavouriteGenreCount = 3

// TopGenres counts genre labels across movies and returns the n most
// frequent. Equal counts keep the order in which labels first appear.
func TopGenres(movies []types.Movie, n int) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, movie := range movies {
		for _, genre := range movie.Genres() {
			if _, seen := counts[genre]; !seen {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
