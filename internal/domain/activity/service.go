package activity

import "context"

type ActivityService interface {
	CreateActivity(ctx context.Context, req CreateActivityRequest) (ActivityResponse, error)
	GetActivities(ctx context.Context, req GetActivitiesRequest) ([]ActivityResponse, error)
	UpdateActivity(ctx context.Context, req UpdateActivityRequest) (ActivityResponse, error)
	DeleteActivity(ctx context.Context, id string) error

	// SplitActivity replaces one activity with two contiguous ones cut at SplitTime
	SplitActivity(ctx context.Context, req SplitActivityRequest) (SplitActivityResponse, error)

	CreateScreenshot(ctx context.Context, req CreateScreenshotRequest) (ScreenshotResponse, error)
	DeleteScreenshots(ctx context.Context, req DeleteScreenshotsRequest) error
}
