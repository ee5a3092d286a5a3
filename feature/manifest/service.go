package manifest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"iiif-presentation/core/apperr"
	"iiif-presentation/core/assetservice"
	"iiif-presentation/core/identity"
	"iiif-presentation/core/logger"
	"iiif-presentation/core/storage"
	"iiif-presentation/feature/manifest/canvas"
	"iiif-presentation/feature/manifest/coordinator"
	"iiif-presentation/feature/manifest/disposition"
	"iiif-presentation/feature/manifest/mirror"
	"iiif-presentation/feature/manifest/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// State is a step of the write state machine.
type State string

const (
	StateValidating               State = "Validating"
	StateResolvingCanvasPaintings State = "ResolvingCanvasPaintings"
	StateResolvingParent          State = "ResolvingParent"
	StateCoordinatingAssets       State = "CoordinatingAssets"
	StatePersisting               State = "Persisting"
	StateCreated                  State = "Created"
	StateUpdated                  State = "Updated"
	StateAccepted                 State = "Accepted"
	StateFailed                   State = "Failed"
)

var prohibitedSlugs = map[string]struct{}{
	"collections":      {},
	"manifests":        {},
	"canvases":         {},
	"paintedResources": {},
	"iiif":             {},
}

// WriteRequest is one create-or-update call.
type WriteRequest struct {
	CustomerID int
	// ManifestID is empty for Create.
	ManifestID string
	// ETag is the caller's version token. Required for updates, rejected for creates.
	ETag     string
	Actor    string
	Manifest models.ManifestRequest
}

// WriteResult is the outcome of a successful write.
type WriteResult struct {
	State    State               `json:"state"`
	ETag     string              `json:"etag"`
	Document *mirror.Document    `json:"manifest"`
	Canvases canvas.Summary      `json:"canvasPaintings"`
	Assets   disposition.Summary `json:"assets"`
}

// ReadResult is a mirrored manifest with its current version token.
type ReadResult struct {
	ETag     string
	Document *mirror.Document
}

// Service orchestrates manifest writes.
type Service struct {
	repo        *Repository
	resolver    *canvas.Resolver
	classifier  *disposition.Classifier
	coordinator *coordinator.Coordinator
	mirror      *mirror.Mirror
	ids         identity.Generator
	parser      canvas.IDParser
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new manifest service.
func NewService(db *gorm.DB, assets assetservice.Client, client storage.Client, storageCfg storage.Config, ids identity.Generator, baseURL string, logger *zap.Logger) *Service {
	repo := NewRepository(db)
	parser := canvas.NewIDParser(baseURL)
	return &Service{
		repo:        repo,
		resolver:    canvas.NewResolver(ids, parser),
		classifier:  disposition.NewClassifier(repo, assets, logger),
		coordinator: coordinator.New(assets, logger),
		mirror:      mirror.New(client, storageCfg),
		ids:         ids,
		parser:      parser,
		logger:      logger,
		now:         time.Now,
	}
}

// write carries one request through the state machine.
type write struct {
	req    WriteRequest
	log    *zap.Logger
	state  State
	create bool
}

func (w *write) enter(s State) {
	w.state = s
	w.log.Debug("Manifest write state", zap.String("state", string(s)))
}

// Create writes a new manifest under a generated id.
func (s *Service) Create(ctx context.Context, req WriteRequest) (*WriteResult, error) {
	if req.ETag != "" {
		return nil, apperr.Concurrency(apperr.CodeETagNotAllowed, "a version token cannot be supplied when creating a manifest")
	}
	ids, err := s.ids.GenerateUniqueIds(ctx, req.CustomerID, 1)
	if err != nil || len(ids) == 0 {
		if err == nil || errors.Is(err, identity.ErrIdentityExhausted) {
			return nil, apperr.Exhausted(apperr.CodeCannotGenerateUniqueID, fmt.Errorf("manifest id: %w", identity.ErrIdentityExhausted))
		}
		return nil, apperr.Unexpected(fmt.Errorf("generate manifest id: %w", err))
	}
	req.ManifestID = ids[0]
	return s.Upsert(ctx, req)
}

// Upsert creates the manifest when it does not exist and updates it otherwise.
func (s *Service) Upsert(ctx context.Context, req WriteRequest) (res *WriteResult, err error) {
	w := &write{req: req, log: logger.ForManifest(s.logger, req.CustomerID, req.ManifestID)}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Manifest write panicked", zap.Any("panic", r), zap.Stack("stack"))
			res, err = nil, apperr.Unexpected(fmt.Errorf("panic during %s: %v", w.state, r))
		}
		if err != nil {
			e := apperr.As(err)
			w.log.Info("Manifest write failed",
				zap.String("state", string(StateFailed)),
				zap.String("failed_in", string(w.state)),
				zap.String("kind", string(e.Kind)),
				zap.String("code", e.Code),
				zap.Error(err))
			err = e
		}
	}()

	return s.run(ctx, w)
}

func (s *Service) run(ctx context.Context, w *write) (*WriteResult, error) {
	req := w.req
	now := s.now().UTC()

	w.enter(StateValidating)
	if !canvas.ValidID(req.ManifestID) {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "manifest id %q is invalid", req.ManifestID)
	}
	existing, err := s.repo.FindManifest(ctx, req.CustomerID, req.ManifestID)
	if err != nil {
		return nil, err
	}
	w.create = existing == nil
	if w.create && req.ETag != "" {
		return nil, apperr.Concurrency(apperr.CodeETagNotAllowed, "manifest %s does not exist; a version token is not allowed", req.ManifestID)
	}
	if !w.create && req.ETag != existing.ETag {
		return nil, apperr.Concurrency(apperr.CodeETagMismatch, "version token does not match manifest %s", req.ManifestID)
	}

	w.enter(StateResolvingCanvasPaintings)
	in := canvas.Input{
		CustomerID: req.CustomerID,
		ManifestID: req.ManifestID,
		Request:    req.Manifest,
		Actor:      req.Actor,
		Now:        now,
	}
	if !w.create {
		in.SpaceID = existing.SpaceID
		if in.Existing, err = s.repo.CanvasPaintings(ctx, req.CustomerID, req.ManifestID); err != nil {
			return nil, err
		}
	}
	plan, err := s.resolver.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	w.enter(StateResolvingParent)
	parentID, slug, err := s.resolveParent(ctx, req, existing)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("write cancelled: %w", err))
	}
	// From here the asset service may be contacted, so the write runs to completion.
	ctx = context.WithoutCancel(ctx)

	w.enter(StateCoordinatingAssets)
	space, err := s.coordinator.EnsureSpace(ctx, coordinator.SpaceRequest{
		CustomerID: req.CustomerID,
		ManifestID: req.ManifestID,
		Label:      req.Manifest.Label,
		Existing:   in.SpaceID,
		Requested:  req.Manifest.CreateSpace,
		Plan:       plan,
	})
	if err != nil {
		return nil, err
	}

	dreq := disposition.Request{CustomerID: req.CustomerID, ManifestID: req.ManifestID, Assets: plan.Assets()}
	if space.Created {
		dreq.NewSpace = space.SpaceID
	}
	decisions, err := s.classifier.Classify(ctx, dreq)
	if err != nil {
		return nil, err
	}
	coordinated, err := s.coordinator.Execute(ctx, req.CustomerID, req.ManifestID, decisions)
	if err != nil {
		return nil, err
	}
	plan.Finalize(coordinated.Submitted)

	w.enter(StatePersisting)
	m := models.Manifest{
		ID:         req.ManifestID,
		CustomerID: req.CustomerID,
		Label:      req.Manifest.Label,
		Slug:       slug,
		ParentID:   parentID,
		SpaceID:    space.SpaceID,
		ETag:       uuid.NewString(),
		Created:    now,
		Modified:   now,
		CreatedBy:  req.Actor,
		ModifiedBy: req.Actor,
	}
	if !w.create {
		m.Created = existing.Created
		m.CreatedBy = existing.CreatedBy
	}

	preq := &PersistRequest{Manifest: m, Create: w.create, Batches: coordinated.Batches}
	if !w.create {
		preq.PreviousETag = existing.ETag
	}
	for _, e := range plan.Entries {
		if e.Existing {
			preq.Updates = append(preq.Updates, e.Row)
		} else {
			preq.Inserts = append(preq.Inserts, e.Row)
		}
	}
	for _, row := range plan.Deletes {
		preq.Deletes = append(preq.Deletes, row.ID)
	}

	if err := s.repo.Persist(ctx, preq); err != nil {
		if errors.Is(err, ErrStaleETag) {
			return nil, apperr.Concurrency(apperr.CodeETagMismatch, "manifest %s was modified concurrently", req.ManifestID)
		}
		if errors.Is(err, ErrManifestExists) {
			return nil, apperr.Concurrency(apperr.CodeETagMismatch, "manifest %s was created concurrently", req.ManifestID)
		}
		return nil, apperr.Unexpected(err)
	}

	doc := mirror.Build(s.parser, m, plan.Rows())
	ref := mirror.Ref{CustomerID: req.CustomerID, ManifestID: req.ManifestID}
	final := StateUpdated
	if w.create {
		final = StateCreated
	}
	if plan.Ingesting() {
		final = StateAccepted
		err = s.mirror.SaveRepresentation(ctx, ref, doc, true)
	} else {
		err = s.mirror.SaveRepresentation(ctx, ref, doc, false)
		if err == nil {
			err = s.mirror.RemoveStaging(ctx, ref)
		}
	}
	if err != nil {
		// The write is committed; reads rebuild from the database until the mirror catches up.
		w.log.Error("Failed to mirror manifest", zap.Bool("staging", plan.Ingesting()), zap.Error(err))
	}

	w.enter(final)
	w.log.Info("Manifest written",
		zap.String("state", string(final)),
		zap.Int("canvases", plan.Summary.Canvases),
		zap.Int("inserted", plan.Summary.Inserts),
		zap.Int("updated", plan.Summary.Updates),
		zap.Int("deleted", plan.Summary.Deletes),
		zap.Int("batches", len(coordinated.Batches)))

	return &WriteResult{
		State:    final,
		ETag:     m.ETag,
		Document: doc,
		Canvases: plan.Summary,
		Assets:   decisions.Summary,
	}, nil
}

// resolveParent applies the slug and parent rules. Omitted values fall back to the
// stored ones, then to the manifest id and the customer's root collection.
func (s *Service) resolveParent(ctx context.Context, req WriteRequest, existing *models.Manifest) (string, string, error) {
	slug := strings.TrimSpace(req.Manifest.Slug)
	if slug == "" && existing != nil {
		slug = existing.Slug
	}
	if slug == "" {
		slug = req.ManifestID
	}
	if _, bad := prohibitedSlugs[slug]; bad {
		return "", "", apperr.Validation(apperr.CodeProhibitedSlug, "slug %q is reserved", slug)
	}

	parentID := s.parentRef(req.Manifest.Parent)
	if parentID == "" && existing != nil {
		parentID = existing.ParentID
	}

	var parent *models.Collection
	var err error
	if parentID == "" {
		parent, err = s.repo.RootCollection(ctx, req.CustomerID)
	} else {
		parent, err = s.repo.FindCollection(ctx, req.CustomerID, parentID)
	}
	if err != nil {
		return "", "", err
	}
	if parent == nil {
		return "", "", apperr.NotFound(apperr.CodeParentNotFound, "parent collection %q not found", parentID)
	}
	if !parent.IsStorageCollection {
		return "", "", apperr.Validation(apperr.CodeParentMustBeStorageCollection, "parent %q is not a storage collection", parent.ID)
	}

	taken, err := s.repo.SlugTaken(ctx, req.CustomerID, parent.ID, slug, req.ManifestID)
	if err != nil {
		return "", "", err
	}
	if taken {
		return "", "", apperr.Conflict(apperr.CodeDuplicateSlug, "slug %q is already used under %s", slug, parent.ID)
	}
	return parent.ID, slug, nil
}

// parentRef accepts a bare collection id or a collection URI and returns the id.
func (s *Service) parentRef(parent string) string {
	parent = strings.TrimRight(strings.TrimSpace(parent), "/")
	if s.parser.IsManaged(parent) {
		return parent[strings.LastIndex(parent, "/")+1:]
	}
	return parent
}

// Get returns the mirrored document of a manifest.
func (s *Service) Get(ctx context.Context, customerID int, manifestID string) (*ReadResult, error) {
	m, err := s.repo.FindManifest(ctx, customerID, manifestID)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	if m == nil {
		return nil, apperr.NotFound(apperr.CodeManifestNotFound, "manifest %s not found", manifestID)
	}

	staging, err := s.repo.IsIngesting(ctx, customerID, manifestID)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}

	ref := mirror.Ref{CustomerID: customerID, ManifestID: manifestID}
	doc, err := s.mirror.ReadRepresentation(ctx, ref, staging)
	if errors.Is(err, mirror.ErrNotFound) {
		doc, err = s.rebuild(ctx, *m)
	}
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return &ReadResult{ETag: m.ETag, Document: doc}, nil
}

// rebuild assembles the document from the database when no mirror copy exists.
func (s *Service) rebuild(ctx context.Context, m models.Manifest) (*mirror.Document, error) {
	rows, err := s.repo.CanvasPaintings(ctx, m.CustomerID, m.ID)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.CanvasPainting, len(rows))
	for i := range rows {
		ptrs[i] = &rows[i]
	}
	s.logger.Warn("Mirrored manifest missing, rebuilt from database",
		zap.Int("customer_id", m.CustomerID),
		zap.String("manifest_id", m.ID))
	return mirror.Build(s.parser, m, ptrs), nil
}
