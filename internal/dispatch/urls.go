package dispatch

import (
	"fmt"
	"strings"
)

const (
	postURLTemplate     = "https://www.facebook.com/p/%s/"
	hashtagURLTemplate  = "https://www.facebook.com/explore/tags/%s/"
	locationURLTemplate = "https://www.facebook.com/explore/locations/%s/"
	profileURLTemplate  = "https://www.facebook.com/%s/"

	// LoginURL is the login page.
	LoginURL = "https://www.facebook.com/accounts/login/"
	// HomeURL is the home (friends) feed.
	HomeURL = "https://www.facebook.com/"
)

// NormalizeHashtag removes every '#' from tag.
func NormalizeHashtag(tag string) string { return strings.ReplaceAll(tag, "#", "") }

// NormalizeProfile removes every '@' from handle.
func NormalizeProfile(handle string) string { return strings.ReplaceAll(handle, "@", "") }

// PostURL returns the page of the post with the given id hash.
func PostURL(idHash string) string { return fmt.Sprintf(postURLTemplate, idHash) }

// HashtagURL returns the explore page of tag, with or without its '#'.
func HashtagURL(tag string) string { return fmt.Sprintf(hashtagURLTemplate, NormalizeHashtag(tag)) }

// LocationURL returns the explore page of a location id.
func LocationURL(gpsID string) string { return fmt.Sprintf(locationURLTemplate, gpsID) }

// ProfileURL returns the profile page of handle, with or without its '@'.
func ProfileURL(handle string) string {
	return fmt.Sprintf(profileURLTemplate, NormalizeProfile(handle))
}
