package api

// Wire model of the judge service REST API. Field names follow the JSON
// the service emits; the client never writes any of these server-owned
// records, it only decodes them.

type Contest struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	IsActive    bool      `json:"isActive"`
	Problems    []Problem `json:"problems"`
}

// ProblemByID returns the contest problem with the given id, or nil when
// no such problem exists in this contest.
func (c *Contest) ProblemByID(problemID int64) *Problem {
	for i := range c.Problems {
		if c.Problems[i].ID == problemID {
			return &c.Problems[i]
		}
	}
	return nil
}

type Problem struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	InputFormat  string     `json:"inputFormat"`
	OutputFormat string     `json:"outputFormat"`
	TimeLimit    int        `json:"timeLimit"`   // seconds
	MemoryLimit  int        `json:"memoryLimit"` // MB
	Difficulty   int        `json:"difficulty"`  // 1..5
	TestCases    []TestCase `json:"testCases"`
}

// ExpectedOutput of hidden test cases may be withheld by the server.
type TestCase struct {
	ID             int64  `json:"id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	IsHidden       bool   `json:"isHidden"`
}

type Submission struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	Language      string `json:"language"`
	Status        Status `json:"status"`
	Result        string `json:"result"`
	ExecutionTime int64  `json:"executionTime"`
	MemoryUsed    int64  `json:"memoryUsed"`
	ErrorMessage  string `json:"errorMessage"`
	SubmittedAt   string `json:"submittedAt"`
	ProblemID     int64  `json:"problemId"`
	ContestID     int64  `json:"contestId"`
	Username      string `json:"username"`
}

type SubmissionRequest struct {
	Code      string `json:"code"`
	Language  string `json:"language"`
	ProblemID int64  `json:"problemId"`
	ContestID int64  `json:"contestId"`
	Username  string `json:"username"`
}

// LeaderboardEntry rows arrive already ranked; the server order is
// authoritative and must not be re-sorted client-side.
type LeaderboardEntry struct {
	Username            string `json:"username"`
	SolvedProblems      int    `json:"solvedProblems"`
	TotalSubmissions    int    `json:"totalSubmissions"`
	AcceptedSubmissions int    `json:"acceptedSubmissions"`
	TotalTime           int64  `json:"totalTime"`
}
