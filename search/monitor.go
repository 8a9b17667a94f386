package search

import "github.com/poiesic/arborist/core"

// QueryMonitor observes the stages of a query. The CLI uses it to explain
// how results were ranked.
type QueryMonitor interface {
	Start(query string, mode Mode)
	AfterDenseSearch(results []*core.SearchResult)
	AfterSparseSearch(results []*core.SearchResult)
	Finish(results []*core.SearchResult)
}

type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Mode)                   {}
func (n *noopMonitor) AfterDenseSearch(_ []*core.SearchResult)  {}
func (n *noopMonitor) AfterSparseSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)            {}
