package surface

// navLog tracks a page's joint session history from committed main-frame
// navigations. Playwright exposes no canGoBack, so the surface derives it.
type navLog struct {
	entries []string
	pos     int
	pending int // -1 or +1 while a traversal is in flight
}

// traverse records that a back (-1) or forward (+1) step was requested.
// It reports false when there is nowhere to go.
func (l *navLog) traverse(delta int) bool {
	next := l.pos + delta
	if len(l.entries) == 0 || next < 0 || next >= len(l.entries) {
		return false
	}
	l.pending = delta
	return true
}

// cancel forgets a traversal that failed.
func (l *navLog) cancel() {
	l.pending = 0
}

// commit applies a committed navigation to url.
func (l *navLog) commit(url string) {
	if l.pending != 0 {
		l.pos += l.pending
		l.pending = 0
		l.entries[l.pos] = url
		return
	}
	if len(l.entries) > 0 && l.entries[l.pos] == url {
		return
	}
	if len(l.entries) > 0 {
		l.entries = l.entries[:l.pos+1]
		l.pos++
	}
	l.entries = append(l.entries, url)
}

func (l *navLog) canGoBack() bool {
	return l.pos > 0
}

func (l *navLog) canGoForward() bool {
	return l.pos+1 < len(l.entries)
}
