package board

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/openjudge/arena/api"
)

// SolvedDelta returns how many more problems the user has solved in the
// current snapshot compared to the previous one. A user absent from a
// snapshot counts as zero solved. Comparison is by username only; rank
// positions carry no meaning here.
func SolvedDelta(prev, curr []api.LeaderboardEntry, username string) int {
	return solvedOf(curr, username) - solvedOf(prev, username)
}

// Newcomers returns the usernames present in curr but not in prev.
func Newcomers(prev, curr []api.LeaderboardEntry) []string {
	return usernames(curr).Difference(usernames(prev)).ToSlice()
}

func usernames(entries []api.LeaderboardEntry) mapset.Set[string] {
	s := mapset.NewSet[string]()
	for _, e := range entries {
		s.Add(e.Username)
	}
	return s
}

func solvedOf(entries []api.LeaderboardEntry, username string) int {
	for _, e := range entries {
		if e.Username == username {
			return e.SolvedProblems
		}
	}
	return 0
}
