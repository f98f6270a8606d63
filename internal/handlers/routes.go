package handlers

import (
	"context"
	"net/http"

	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Store          repositories.Store
	Sessions       SessionManager
	Gate           middleware.Authenticator
	Media          MediaStore
	Views          ViewEngine
	Graph          SocialGraph
	Limiter        middleware.RateLimiter
	Cookies        CookieSecurity
	MaxUploadBytes int64
	HealthCheck    func(ctx context.Context) error
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	store := deps.Store
	health := HealthHandler{Check: deps.HealthCheck}
	accounts := AccountHandler{
		Accounts:       store.Accounts,
		Sessions:       deps.Sessions,
		Media:          deps.Media,
		Views:          deps.Views,
		Cookies:        deps.Cookies,
		MaxUploadBytes: deps.MaxUploadBytes,
	}
	videos := VideoHandler{
		Videos:         store.Videos,
		Accounts:       store.Accounts,
		Media:          deps.Media,
		Views:          deps.Views,
		MaxUploadBytes: deps.MaxUploadBytes,
	}
	comments := CommentHandler{Comments: store.Comments, Videos: store.Videos, Views: deps.Views}
	tweets := TweetHandler{Tweets: store.Tweets, Accounts: store.Accounts}
	likes := LikeHandler{Graph: deps.Graph, Views: deps.Views}
	subscriptions := SubscriptionHandler{Graph: deps.Graph, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: store.Playlists, Videos: store.Videos, Accounts: store.Accounts, Views: deps.Views}
	dashboard := DashboardHandler{Videos: store.Videos, Views: deps.Views}

	private := middleware.RequireIdentity(deps.Gate)
	public := middleware.OptionalIdentity(deps.Gate)
	limited := func(scope string) func(http.Handler) http.Handler {
		if deps.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimit(deps.Limiter, scope)
	}

	route := func(pattern string, h http.HandlerFunc, wrap ...func(http.Handler) http.Handler) {
		var handler http.Handler = h
		for i := len(wrap) - 1; i >= 0; i-- {
			handler = wrap[i](handler)
		}
		mux.Handle(pattern, handler)
	}

	route("GET /healthz", health.Handle)
	route("GET /api/v1/healthcheck", health.Handle)

	route("POST /api/v1/users/register", accounts.Register, limited("register"))
	route("POST /api/v1/users/login", accounts.Login, limited("login"))
	route("POST /api/v1/users/refresh-token", accounts.RefreshToken, limited("refresh"))
	route("POST /api/v1/users/logout", accounts.Logout, private)
	route("POST /api/v1/users/change-password", accounts.ChangePassword, private)
	route("GET /api/v1/users/current-user", accounts.CurrentUser, private)
	route("PATCH /api/v1/users/update-account", accounts.UpdateAccount, private)
	route("PATCH /api/v1/users/avatar", accounts.UpdateAvatar, private)
	route("PATCH /api/v1/users/cover-image", accounts.UpdateCoverImage, private)
	route("GET /api/v1/users/c/{username}", accounts.ChannelProfile, private)
	route("GET /api/v1/users/history", accounts.WatchHistory, private)

	route("GET /api/v1/videos", videos.List, public)
	route("POST /api/v1/videos", videos.Publish, private)
	route("GET /api/v1/videos/{videoId}", videos.Get, public)
	route("PATCH /api/v1/videos/{videoId}", videos.Update, private)
	route("DELETE /api/v1/videos/{videoId}", videos.Delete, private)
	route("PATCH /api/v1/videos/toggle/publish/{videoId}", videos.TogglePublish, private)

	route("GET /api/v1/comments/{videoId}", comments.List, public)
	route("POST /api/v1/comments/{videoId}", comments.Add, private)
	route("PATCH /api/v1/comments/c/{commentId}", comments.Update, private)
	route("DELETE /api/v1/comments/c/{commentId}", comments.Delete, private)

	route("POST /api/v1/likes/toggle/v/{videoId}", likes.ToggleVideo, private)
	route("POST /api/v1/likes/toggle/c/{commentId}", likes.ToggleComment, private)
	route("POST /api/v1/likes/toggle/t/{tweetId}", likes.ToggleTweet, private)
	route("GET /api/v1/likes/videos", likes.LikedVideos, private)

	route("POST /api/v1/tweets", tweets.Create, private)
	route("GET /api/v1/tweets/user/{userId}", tweets.ListByUser, private)
	route("PATCH /api/v1/tweets/{tweetId}", tweets.Update, private)
	route("DELETE /api/v1/tweets/{tweetId}", tweets.Delete, private)

	route("POST /api/v1/subscriptions/c/{channelId}", subscriptions.Toggle, private)
	route("GET /api/v1/subscriptions/c/{channelId}", subscriptions.Subscribers, private)
	route("GET /api/v1/subscriptions/u/{subscriberId}", subscriptions.Subscribed, private)

	route("POST /api/v1/playlists", playlists.Create, private)
	route("GET /api/v1/playlists/{playlistId}", playlists.Get, private)
	route("PATCH /api/v1/playlists/{playlistId}", playlists.Update, private)
	route("DELETE /api/v1/playlists/{playlistId}", playlists.Delete, private)
	route("PATCH /api/v1/playlists/add/{videoId}/{playlistId}", playlists.AddVideo, private)
	route("PATCH /api/v1/playlists/remove/{videoId}/{playlistId}", playlists.RemoveVideo, private)
	route("GET /api/v1/playlists/user/{userId}", playlists.ListByUser, private)

	route("GET /api/v1/dashboard/stats", dashboard.Stats, private)
	route("GET /api/v1/dashboard/videos", dashboard.ListVideos, private)
}
