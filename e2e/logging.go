//go:build e2e

package e2e

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/testcontainers/testcontainers-go"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

type logWaiter struct {
	node    string
	pattern *regexp.Regexp
	matched chan struct{}
}

// LogManager collects container output per node and wakes up tests waiting for a pattern
type LogManager struct {
	mu      sync.Mutex
	history map[string]*strings.Builder
	waiters []*logWaiter
}

func NewLogManager() *LogManager {
	return &LogManager{
		history: make(map[string]*strings.Builder),
	}
}

func (m *LogManager) Accept(node string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.history[node]
	if !ok {
		b = &strings.Builder{}
		m.history[node] = b
	}
	b.WriteString(content)
	for _, w := range m.waiters {
		if w.node == node && w.pattern.MatchString(content) {
			select {
			case w.matched <- struct{}{}:
			default:
			}
		}
	}
}

// Subscribe matches pattern against output already received and everything that follows
func (m *LogManager) Subscribe(node string, pattern *regexp.Regexp) *logWaiter {
	w := &logWaiter{node: node, pattern: pattern, matched: make(chan struct{}, 1)}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waiters = append(m.waiters, w)
	if b, ok := m.history[node]; ok && pattern.MatchString(b.String()) {
		w.matched <- struct{}{}
	}
	return w
}

func (m *LogManager) Unsubscribe(w *logWaiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.waiters {
		if s == w {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			break
		}
	}
}

// Logs returns everything a node has written so far
func (m *LogManager) Logs(node string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.history[node]; ok {
		return b.String()
	}
	return ""
}

type UnifiedLogConsumer struct {
	Node    string
	Manager *LogManager
}

func (c *UnifiedLogConsumer) Accept(l testcontainers.Log) {
	content := StripAnsi(string(l.Content))
	fmt.Printf("[%s:%s] %s", c.Node, l.LogType, content)
	c.Manager.Accept(c.Node, content)
}
