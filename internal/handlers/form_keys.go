package handlers

import (
	"strconv"
	"strings"
)

// CSRF form keys. Thread keys are scoped to the discussion: one like token
// and one delete token serve every post of a thread, so the session holds a
// few tokens per page however long the thread is. The dashboard uses one
// key per moderation action for the same reason.
const (
	formRegister         = "register"
	formLogin            = "login"
	formLogout           = "logout"
	formDiscussionCreate = "discussion_create"

	adminUserKey       = "delete_user"
	adminDiscussionKey = "admin_delete_discussion"
	adminPostKey       = "admin_delete_post"
)

const (
	prefixReply      = "discussion_reply_"
	prefixUpdate     = "update_discussion_"
	prefixDelete     = "delete_discussion_"
	prefixDeletePost = "delete_post_"
	prefixLike       = "toggle_like_"
)

func keyFor(prefix string, id uint64) string {
	return prefix + strconv.FormatUint(id, 10)
}

func replyKey(discussionID uint64) string      { return keyFor(prefixReply, discussionID) }
func updateKey(discussionID uint64) string     { return keyFor(prefixUpdate, discussionID) }
func deleteKey(discussionID uint64) string     { return keyFor(prefixDelete, discussionID) }
func deletePostKey(discussionID uint64) string { return keyFor(prefixDeletePost, discussionID) }
func likeKey(discussionID uint64) string       { return keyFor(prefixLike, discussionID) }

// idFromKey returns the id a scoped key was built with.
func idFromKey(key, prefix string) (uint64, bool) {
	if !strings.HasPrefix(key, prefix) {
		return 0, false
	}
	return parseID(key[len(prefix):])
}

// moderationKeys maps each dashboard action to its form key.
var moderationKeys = map[string]string{
	"delete_user":       adminUserKey,
	"delete_discussion": adminDiscussionKey,
	"delete_post":       adminPostKey,
}
