package core

// Metrics receives relay counters from the hub goroutine.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	RoomsActive(n int)
	MemberJoined()
	MemberLeft()
	SignalRelayed()
	SignalDropped()
	ChatPosted()
	ChatDropped()
	ClientEvicted()
}

type nopMetrics struct{}

func (nopMetrics) ConnectionOpened() {}
func (nopMetrics) ConnectionClosed() {}
func (nopMetrics) RoomsActive(int)   {}
func (nopMetrics) MemberJoined()     {}
func (nopMetrics) MemberLeft()       {}
func (nopMetrics) SignalRelayed()    {}
func (nopMetrics) SignalDropped()    {}
func (nopMetrics) ChatPosted()       {}
func (nopMetrics) ChatDropped()      {}
func (nopMetrics) ClientEvicted()    {}
