package crawlers

import (
	"strconv"
	"testing"
)

func TestFrontier_FIFOAndDedup(t *testing.T) {
	f := NewFrontier("https://a.com", 10, nil)

	if f.Offer("https://a.com") {
		t.Error("种子已在队列中,不应再次入队")
	}
	if !f.Offer("https://a.com/x") || !f.Offer("https://a.com/y") {
		t.Fatal("新URL应当入队")
	}
	if f.Offer("https://a.com/x") {
		t.Error("已入队的URL不应重复入队")
	}

	want := []string{"https://a.com", "https://a.com/x", "https://a.com/y"}
	for _, w := range want {
		u, ok := f.Next()
		if !ok || u != w {
			t.Fatalf("期望 %s, 实际 %s (ok=%v)", w, u, ok)
		}
		f.MarkVisited(u)
	}

	if _, ok := f.Next(); ok {
		t.Error("队列应为空")
	}
	if f.Offer("https://a.com/x") {
		t.Error("已访问的URL不应入队")
	}
}

func TestFrontier_MaxPages(t *testing.T) {
	f := NewFrontier("https://a.com", 2, nil)
	for i := 0; i < 5; i++ {
		f.Offer("https://a.com/p" + strconv.Itoa(i))
	}

	visited := 0
	for {
		u, ok := f.Next()
		if !ok {
			break
		}
		f.MarkVisited(u)
		visited++
	}

	if visited != 2 || f.VisitedCount() != 2 {
		t.Errorf("期望访问2页, 实际 %d", visited)
	}
	if f.PendingCount() != 4 {
		t.Errorf("期望剩余4个待爬URL, 实际 %d", f.PendingCount())
	}
}

func TestFrontier_KnownURLsRejected(t *testing.T) {
	known := map[string]bool{"https://a.com/old": true}
	f := NewFrontier("https://a.com", 10, func(u string) bool { return known[u] })

	if f.Offer("https://a.com/old") {
		t.Error("历史日志中的URL不应入队")
	}
	if !f.Offer("https://a.com/new") {
		t.Error("新URL应当入队")
	}
}

func TestFrontier_NeverYieldsTwice(t *testing.T) {
	f := NewFrontier("https://a.com", 5000, nil)
	seen := make(map[string]bool)

	// 每访问一页都再次提供全部链接
	links := make([]string, 0, 3000)
	for i := 0; i < 3000; i++ {
		links = append(links, "https://a.com/"+strconv.Itoa(i))
	}
	for {
		u, ok := f.Next()
		if !ok {
			break
		}
		if seen[u] {
			t.Fatalf("URL被返回两次: %s", u)
		}
		if f.IsVisited(u) || f.IsQueued(u) {
			t.Fatalf("出队的URL不应仍在已访问集合或队列中: %s", u)
		}
		seen[u] = true
		f.MarkVisited(u)
		if len(seen) < 3 {
			for _, l := range links {
				f.Offer(l)
			}
		}
	}
	if len(seen) != 3001 {
		t.Errorf("期望访问3001页, 实际 %d", len(seen))
	}
}
