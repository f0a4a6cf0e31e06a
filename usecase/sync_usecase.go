package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"offline-hub/domain"
	"offline-hub/metrics"
	"offline-hub/port"
)

// SyncUsecase reconciles the local article mirror against the origin and
// materializes offline-renderable pages and images for every mirrored
// article. One instance exists per process; its in-flight latch is the
// only concurrency control for reconciliation passes.
type SyncUsecase struct {
	store  port.LocalStorePort
	cache  port.ResponseCachePort
	origin port.OriginPort
	bus    *SignalBus
	logger *slog.Logger

	// incrementalProbe enables the updated_since pre-check. Deletions
	// are only detectable on full fetches, so the probe trades one pass
	// of deletion latency for a cheap no-op check.
	incrementalProbe bool

	// inFlight is a single-slot latch. A pass arriving while another is
	// running is dropped, not queued.
	inFlight atomic.Bool
}

// NewSyncUsecase creates a new SyncUsecase.
func NewSyncUsecase(
	store port.LocalStorePort,
	cache port.ResponseCachePort,
	origin port.OriginPort,
	bus *SignalBus,
	logger *slog.Logger,
) *SyncUsecase {
	return &SyncUsecase{
		store:  store,
		cache:  cache,
		origin: origin,
		bus:    bus,
		logger: logger,
	}
}

// EnableIncrementalProbe turns on the updated_since pre-check for
// background passes.
func (u *SyncUsecase) EnableIncrementalProbe() {
	u.incrementalProbe = true
}

// InFlight reports whether a reconciliation pass is currently running.
func (u *SyncUsecase) InFlight() bool {
	return u.inFlight.Load()
}

// CheckAndSync runs one reconciliation pass if none is in flight. When
// the remote and local sets already agree it is a silent no-op; no
// signal is emitted and nothing is written.
func (u *SyncUsecase) CheckAndSync(ctx context.Context) error {
	if !u.inFlight.CompareAndSwap(false, true) {
		u.logger.InfoContext(ctx, "sync already in progress, dropping call")
		return domain.ErrSyncInFlight
	}
	defer u.inFlight.Store(false)

	return u.reconcile(ctx, false)
}

// ForceSync runs one reconciliation pass and re-materializes page and
// image cache entries for every currently-listed remote article, even
// when no diff was detected.
func (u *SyncUsecase) ForceSync(ctx context.Context) error {
	if !u.inFlight.CompareAndSwap(false, true) {
		u.logger.InfoContext(ctx, "sync already in progress, dropping call")
		return domain.ErrSyncInFlight
	}
	defer u.inFlight.Store(false)

	return u.reconcile(ctx, true)
}

// reconcile fetches the remote listing, diffs it against the mirror and
// applies the result: deletions first (with page cache cleanup), then
// upserts, then page/image cache population, then the sync timestamp.
func (u *SyncUsecase) reconcile(ctx context.Context, force bool) error {
	start := time.Now()
	passID := uuid.New().String()

	log := u.logger.With("pass_id", passID)
	log.InfoContext(ctx, "checking for changes", "force", force)

	if u.incrementalProbe && !force {
		skip, err := u.probeUnchanged(ctx, log)
		if err != nil {
			return u.fail(ctx, passID, start, err)
		}
		if skip {
			metrics.RecordSync("noop", time.Since(start).Seconds())
			return nil
		}
	}

	remote, err := u.origin.ListArticles(ctx, "")
	if err != nil {
		return u.fail(ctx, passID, start, fmt.Errorf("failed to fetch remote listing: %w", err))
	}

	local, err := u.store.GetAll(ctx)
	if err != nil {
		return u.fail(ctx, passID, start, fmt.Errorf("failed to load local snapshots: %w", err))
	}

	changes := domain.DetectChanges(remote, local)

	if !changes.HasChanges() && !force {
		log.InfoContext(ctx, "no changes, skipping sync")
		metrics.RecordSync("noop", time.Since(start).Seconds())
		return nil
	}

	if changes.HasChanges() {
		log.InfoContext(ctx, "changes detected", "summary", changes.Summary())
		u.bus.Publish(domain.Signal{
			Type:         domain.SignalSyncStarted,
			PassID:       passID,
			NewCount:     len(changes.New),
			UpdatedCount: len(changes.Updated),
			DeletedCount: len(changes.DeletedIDs),
		})

		if len(changes.DeletedIDs) > 0 {
			if _, err := u.store.DeleteMany(ctx, changes.DeletedIDs); err != nil {
				return u.fail(ctx, passID, start, fmt.Errorf("failed to delete removed articles: %w", err))
			}
			u.deleteCachedPages(ctx, log, changes.DeletedIDs)
		}

		if upserts := changes.Upserts(); len(upserts) > 0 {
			if _, err := u.store.PutMany(ctx, upserts); err != nil {
				return u.fail(ctx, passID, start, fmt.Errorf("failed to save articles: %w", err))
			}
		}
	}

	toCache := changes.Upserts()
	if force {
		toCache = remote
	}
	report := u.cacheArticlePages(ctx, log, toCache)
	log.InfoContext(ctx, "article page caching finished",
		"cached", report.CachedCount(),
		"skipped", report.SkippedCount(),
	)

	if err := u.store.SetLastSyncTime(ctx, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return u.fail(ctx, passID, start, fmt.Errorf("failed to record sync time: %w", err))
	}

	u.bus.Publish(domain.Signal{
		Type:         domain.SignalSyncComplete,
		PassID:       passID,
		NewCount:     len(changes.New),
		UpdatedCount: len(changes.Updated),
		DeletedCount: len(changes.DeletedIDs),
	})

	metrics.RecordSync("success", time.Since(start).Seconds())
	metrics.RecordApplied("new", len(changes.New))
	metrics.RecordApplied("updated", len(changes.Updated))
	metrics.RecordApplied("deleted", len(changes.DeletedIDs))

	log.InfoContext(ctx, "sync complete", "summary", changes.Summary())

	return nil
}

// probeUnchanged asks the origin for records updated since the last
// sync. An empty answer means there is nothing new to pull, though
// remote deletions stay invisible until the next full fetch.
func (u *SyncUsecase) probeUnchanged(ctx context.Context, log *slog.Logger) (bool, error) {
	last, err := u.store.GetLastSyncTime(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read last sync time: %w", err)
	}
	if last == "" {
		return false, nil
	}

	changed, err := u.origin.ListArticles(ctx, last)
	if err != nil {
		return false, fmt.Errorf("incremental probe failed: %w", err)
	}
	if len(changed) == 0 {
		log.InfoContext(ctx, "incremental probe found no updates", "since", last)
		return true, nil
	}

	return false, nil
}

// fail surfaces a reconciliation failure as a signal and an error.
func (u *SyncUsecase) fail(ctx context.Context, passID string, start time.Time, err error) error {
	u.logger.ErrorContext(ctx, "sync failed", "pass_id", passID, "error", err)

	u.bus.Publish(domain.Signal{
		Type:   domain.SignalSyncFailed,
		PassID: passID,
		Error:  err.Error(),
	})

	metrics.RecordSync("error", time.Since(start).Seconds())

	return err
}

// deleteCachedPages removes the detail page and both card fragments for
// each deleted article. Images are intentionally left untouched: an
// image URL may be referenced by multiple articles or reused, and
// storage reclamation is deferred to the host's eviction policy.
func (u *SyncUsecase) deleteCachedPages(ctx context.Context, log *slog.Logger, ids []int64) {
	for _, id := range ids {
		for _, key := range []string{
			domain.ArticlePagePath(id),
			domain.ArticleCardPath(id),
			domain.ArticleCardSmallPath(id),
		} {
			deleted, err := u.cache.Delete(ctx, domain.NamespacePages, key)
			if err != nil {
				log.WarnContext(ctx, "failed to remove cached page", "key", key, "error", err)
				continue
			}
			if deleted {
				log.DebugContext(ctx, "removed cached page", "key", key)
			}
		}
	}
}

// cacheArticlePages materializes the detail page, both card fragments
// and the image for each article. Articles are processed independently;
// one article's failure never aborts the batch. The listing page is
// refreshed once per pass even when the batch is empty, so cards for
// deleted articles disappear from the cached listing.
func (u *SyncUsecase) cacheArticlePages(ctx context.Context, log *slog.Logger, articles []domain.ArticleSnapshot) *domain.CacheReport {
	if err := u.cachePage(ctx, domain.ArticleListingPath); err != nil {
		log.WarnContext(ctx, "failed to cache listing page", "error", err)
	}

	report := &domain.CacheReport{}
	for _, article := range articles {
		if err := u.cacheOneArticle(ctx, log, article); err != nil {
			log.WarnContext(ctx, "failed to cache article pages",
				"article_id", article.ID,
				"error", err,
			)
			report.Add(article.ID, domain.OutcomeSkipped, err.Error())
			continue
		}
		report.Add(article.ID, domain.OutcomeCached, "")
	}

	return report
}

// cacheOneArticle fetches and stores the page entries for one article.
// Image caching is best-effort on its own: a missing image never fails
// the article.
func (u *SyncUsecase) cacheOneArticle(ctx context.Context, log *slog.Logger, article domain.ArticleSnapshot) error {
	for _, pathname := range []string{
		domain.ArticlePagePath(article.ID),
		domain.ArticleCardPath(article.ID),
		domain.ArticleCardSmallPath(article.ID),
	} {
		if err := u.cachePage(ctx, pathname); err != nil {
			return err
		}
	}

	if article.ImageLink != "" {
		if err := u.cacheImage(ctx, article.ImageLink); err != nil {
			log.WarnContext(ctx, "could not cache article image",
				"article_id", article.ID,
				"image", article.ImageLink,
				"error", err,
			)
		}
	}

	return nil
}

// cachePage fetches one same-origin page and stores it keyed by pathname.
func (u *SyncUsecase) cachePage(ctx context.Context, pathname string) error {
	res, err := u.origin.FetchPage(ctx, pathname)
	if err != nil {
		return err
	}

	return u.cache.Put(ctx, domain.NamespacePages, pathname, res)
}

// cacheImage stores an article image unless it is already cached.
func (u *SyncUsecase) cacheImage(ctx context.Context, imageURL string) error {
	_, err := u.cache.Match(ctx, domain.NamespaceImages, imageURL)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	res, err := u.origin.FetchExternal(ctx, imageURL)
	if err != nil {
		return err
	}

	return u.cache.Put(ctx, domain.NamespaceImages, imageURL, res)
}
