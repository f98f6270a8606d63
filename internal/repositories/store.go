package repositories

// Store bundles one repository per collection.
type Store struct {
	Accounts      AccountRepository
	Videos        VideoRepository
	Comments      CommentRepository
	Tweets        TweetRepository
	Likes         LikeRepository
	Playlists     PlaylistRepository
	Subscriptions SubscriptionRepository
}
