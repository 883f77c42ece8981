// Package offer реализует операции над объявлениями с проверкой прав.
//
// Любое изменение объявления проходит три шага: поиск активного пользователя,
// поиск объявления и сравнение владельца. Неизвестный пользователь отклоняется
// до проверки владельца.
package offer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/magabrotheeeer/offer-service/internal/events"
	"github.com/magabrotheeeer/offer-service/internal/lib/clock"
	"github.com/magabrotheeeer/offer-service/internal/lib/idgen"
	"github.com/magabrotheeeer/offer-service/internal/lib/sl"
	"github.com/magabrotheeeer/offer-service/internal/metrics"
	"github.com/magabrotheeeer/offer-service/internal/models"
	"github.com/magabrotheeeer/offer-service/internal/storage"
)

var (
	// ErrUserIDNotFound: пользователь не существует или отключён.
	ErrUserIDNotFound = errors.New("user id not found")
	// ErrUserNotAuthorized: пользователь не является владельцем объявления.
	ErrUserNotAuthorized = errors.New("user not authorized")
	// ErrOfferNotFound: объявление не существует или закрыто.
	ErrOfferNotFound = errors.New("offer not found")
)

// DefaultCacheTTL используется, если в Deps не задан CacheTTL.
const DefaultCacheTTL = time.Hour

// OfferRepository определяет методы хранилища объявлений.
type OfferRepository interface {
	// CreateOffer сохраняет новое объявление.
	CreateOffer(ctx context.Context, offer *models.Offer) error
	// GetOffer возвращает объявление в любом состоянии или storage.ErrNotFound.
	GetOffer(ctx context.Context, id string) (*models.Offer, error)
	// ListOffersByPublisher возвращает все объявления пользователя.
	ListOffersByPublisher(ctx context.Context, publisherID string) ([]*models.Offer, error)
	// ModifyOffer атомарно читает объявление, вызывает fn и сохраняет результат.
	// Ошибка fn отменяет изменение.
	ModifyOffer(ctx context.Context, id string, fn func(*models.Offer) error) (*models.Offer, error)
}

// UserFinder ищет активных пользователей.
type UserFinder interface {
	FindEnabledUserByID(ctx context.Context, id string) (*models.User, error)
}

// Cache описывает методы для кэширования объявлений.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// Deps: зависимости сервиса. Cache может быть nil.
type Deps struct {
	Offers   OfferRepository
	Users    UserFinder
	Cache    Cache
	Events   events.Publisher
	Clock    clock.Clock
	IDs      idgen.Generator
	CacheTTL time.Duration
	Log      *slog.Logger
}

// Service проверяет права пользователя и выполняет операции над объявлениями.
type Service struct {
	offers   OfferRepository
	users    UserFinder
	cache    Cache
	events   events.Publisher
	clock    clock.Clock
	ids      idgen.Generator
	cacheTTL time.Duration
	log      *slog.Logger
}

// New создаёт сервис, подставляя значения по умолчанию для незаданных зависимостей.
func New(d Deps) *Service {
	s := &Service{
		offers:   d.Offers,
		users:    d.Users,
		cache:    d.Cache,
		events:   d.Events,
		clock:    d.Clock,
		ids:      d.IDs,
		cacheTTL: d.CacheTTL,
		log:      d.Log,
	}
	if s.events == nil {
		s.events = events.Noop{}
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.ids == nil {
		s.ids = idgen.UUID{}
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = DefaultCacheTTL
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	return s
}

func cacheKey(offerID string) string {
	return "offer:" + offerID
}

// FindOpenByID возвращает открытое объявление. Права не проверяются.
func (s *Service) FindOpenByID(ctx context.Context, offerID string) (_ *models.Offer, err error) {
	const op = "offer.FindOpenByID"
	defer func() { metrics.ObserveOperation(op, outcome(err)) }()

	o, err := s.findOpen(ctx, offerID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// FindAllOpenByPublisherID возвращает открытые объявления пользователя, упорядоченные по времени создания.
// Для неизвестного пользователя возвращается ErrUserIDNotFound, даже если объявлений нет.
func (s *Service) FindAllOpenByPublisherID(ctx context.Context, userID string) (_ []*models.Offer, err error) {
	const op = "offer.FindAllOpenByPublisherID"
	defer func() { metrics.ObserveOperation(op, outcome(err)) }()

	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	all, err := s.offers.ListOffersByPublisher(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	open := make([]*models.Offer, 0, len(all))
	for _, o := range all {
		if o.IsOpen(now) {
			open = append(open, o)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].CreateTime.Before(open[j].CreateTime)
	})
	return open, nil
}

// Publish создаёт объявление от имени пользователя publisherID.
func (s *Service) Publish(ctx context.Context, publisherID string, draft models.OfferDraft) (_ *models.Offer, err error) {
	const op = "offer.Publish"
	defer func() { metrics.ObserveOperation(op, outcome(err)) }()

	user, err := s.resolveUser(ctx, publisherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	draft.PublisherID = user.ID

	now := s.clock.Now()
	o, err := models.NewOffer(draft, s.ids.NewID(), now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.offers.CreateOffer(ctx, o); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("offer published", slog.String("offer_id", o.ID), slog.String("publisher_id", o.PublisherID))
	s.storeInCache(ctx, o)
	s.emit(ctx, events.OfferPublished, o, now)
	return o, nil
}

// Update применяет правку к объявлению offerID от имени userID.
// Открытость объявления не требуется. При любой ошибке объявление в хранилище не меняется.
// Пустая правка проходит те же проверки, но событие об изменении не публикуется.
func (s *Service) Update(ctx context.Context, offerID, userID string, edits models.OfferEdits) (_ *models.Offer, err error) {
	const op = "offer.Update"
	defer func() { metrics.ObserveOperation(op, outcome(err)) }()

	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.offers.ModifyOffer(ctx, offerID, func(o *models.Offer) error {
		if o.PublisherID != user.ID {
			return ErrUserNotAuthorized
		}
		return o.ApplyEdits(edits)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrOfferNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if edits.IsEmpty() {
		s.log.Debug("empty edit, offer unchanged", slog.String("offer_id", updated.ID))
		return updated, nil
	}

	s.log.Info("offer updated", slog.String("offer_id", updated.ID))
	s.storeInCache(ctx, updated)
	s.emit(ctx, events.OfferUpdated, updated, s.clock.Now())
	return updated, nil
}

// CancelAsDelete отменяет открытое объявление вместо удаления.
// Сначала ищется объявление, затем пользователь, затем проверяется владелец.
func (s *Service) CancelAsDelete(ctx context.Context, offerID, userID string) (err error) {
	const op = "offer.CancelAsDelete"
	defer func() { metrics.ObserveOperation(op, outcome(err)) }()

	now := s.clock.Now()
	if _, err = s.findOpen(ctx, offerID, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	canceled, err := s.offers.ModifyOffer(ctx, offerID, func(o *models.Offer) error {
		if !o.IsOpen(now) {
			return ErrOfferNotFound
		}
		if o.PublisherID != user.ID {
			return ErrUserNotAuthorized
		}
		o.Cancel()
		return nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrOfferNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("offer canceled", slog.String("offer_id", canceled.ID))
	s.storeInCache(ctx, canceled)
	s.emit(ctx, events.OfferCanceled, canceled, now)
	return nil
}

func (s *Service) resolveUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUserIDNotFound
	}
	user, err := s.users.FindEnabledUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserIDNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, ErrUserIDNotFound
	}
	return user, nil
}

func (s *Service) findOpen(ctx context.Context, offerID string, now time.Time) (*models.Offer, error) {
	o, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !o.IsOpen(now) {
		return nil, ErrOfferNotFound
	}
	return o, nil
}

func (s *Service) loadOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	if s.cache != nil {
		var cached models.Offer
		found, err := s.cache.Get(ctx, cacheKey(offerID), &cached)
		if err != nil {
			s.log.Warn("failed to read offer from cache", slog.String("offer_id", offerID), sl.Err(err))
		}
		if err == nil && found {
			return &cached, nil
		}
	}

	o, err := s.offers.GetOffer(ctx, offerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	s.storeInCache(ctx, o)
	return o, nil
}

// storeInCache записывает актуальную версию объявления.
// Если записать не удалось, ключ удаляется, чтобы не читать устаревшую версию.
func (s *Service) storeInCache(ctx context.Context, o *models.Offer) {
	if s.cache == nil {
		return
	}
	key := cacheKey(o.ID)
	if err := s.cache.Set(ctx, key, o, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache offer", slog.String("key", key), sl.Err(err))
		if err = s.cache.Invalidate(ctx, key); err != nil {
			s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
		}
	}
}

func (s *Service) emit(ctx context.Context, kind events.Kind, o *models.Offer, at time.Time) {
	if err := s.events.Publish(ctx, events.NewOfferEvent(kind, o, at)); err != nil {
		metrics.EventPublishFailures.WithLabelValues(string(kind)).Inc()
		s.log.Error("failed to publish offer event",
			slog.String("kind", string(kind)), slog.String("offer_id", o.ID), sl.Err(err))
	}
}

func outcome(err error) string {
	var verr *models.ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrUserIDNotFound):
		return metrics.OutcomeUserNotFound
	case errors.Is(err, ErrOfferNotFound):
		return metrics.OutcomeOfferNotFound
	case errors.Is(err, ErrUserNotAuthorized):
		return metrics.OutcomeNotAuthorized
	case errors.As(err, &verr):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
