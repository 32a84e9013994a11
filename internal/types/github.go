package types

type CommitInfo struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

type RepoInfo struct {
	Owner      string      `json:"owner"`
	Repo       string      `json:"repo"`
	Stars      int         `json:"stars"`
	Forks      int         `json:"forks"`
	OpenIssues int         `json:"openIssues"`
	LastCommit *CommitInfo `json:"lastCommit"`
}
