// internal/browser/feed.go
package browser

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chromedp/chromedp"
)

// likeMarkerAttr tags like buttons found by FeedPosts so LikePost can address them.
const likeMarkerAttr = "data-socialbot-like"

// FeedPost is a post visible in the home feed whose like button has not been pressed.
type FeedPost struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Marker int    `json:"marker"`
}

// collectFeedScript marks unpressed like buttons in feed articles and returns
// one entry per article. The post id is taken from the permalink when present.
const collectFeedScript = `(() => {
	const out = [];
	let marker = 0;
	document.querySelectorAll('div[role="feed"] div[role="article"]').forEach((article) => {
		const button = article.querySelector('div[role="button"][aria-label="Like"]:not([aria-pressed="true"])');
		if (!button) { return; }
		const link = article.querySelector('a[href*="/posts/"], a[href*="story_fbid="], a[href*="/p/"]');
		const author = article.querySelector('h2 a, h3 a, strong a');
		let id = '';
		if (link) {
			const m = link.href.match(/\/posts\/([^/?]+)|story_fbid=([^&]+)|\/p\/([^/?]+)/);
			if (m) { id = m[1] || m[2] || m[3]; }
		}
		if (!id) { return; }
		button.setAttribute('` + likeMarkerAttr + `', String(marker));
		out.push({id: id, author: author ? author.textContent.trim() : '', marker: marker});
		marker++;
	});
	return out;
})()`

// FeedPosts returns the unliked posts currently rendered in the feed.
func (s *Session) FeedPosts(ctx context.Context) ([]FeedPost, error) {
	var posts []FeedPost
	if err := s.runActions(ctx, chromedp.Evaluate(collectFeedScript, &posts)); err != nil {
		return nil, fmt.Errorf("failed to collect feed posts: %w", err)
	}
	return posts, nil
}

// LikePost scrolls to and clicks the like button of post.
func (s *Session) LikePost(ctx context.Context, post FeedPost) error {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	selector := fmt.Sprintf(`[%s="%s"]`, likeMarkerAttr, strconv.Itoa(post.Marker))
	err := s.runActions(ctx,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return fmt.Errorf("failed to like post %s: %w", post.ID, err)
	}
	return nil
}

// ScrollFeed scrolls the page down by roughly one viewport so the feed loads more posts.
func (s *Session) ScrollFeed(ctx context.Context) error {
	if err := s.runActions(ctx, chromedp.Evaluate(`window.scrollBy(0, window.innerHeight * 0.9)`, nil)); err != nil {
		return fmt.Errorf("failed to scroll feed: %w", err)
	}
	return nil
}
