package search

import "github.com/signalpath/recall/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterVectorSearch(matches []*core.SimilarityMatch)
	AfterKeywordMatch(ids map[string]bool, degraded bool)
	AfterMetadataJoin(calls []*core.CallRecord)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                               {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.SimilarityMatch)  {}
func (n *noopMonitor) AfterKeywordMatch(_ map[string]bool, _ bool)  {}
func (n *noopMonitor) AfterMetadataJoin(_ []*core.CallRecord)       {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                {}
