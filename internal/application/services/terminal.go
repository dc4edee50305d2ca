package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/wallee-gateway/internal/application"
	"github.com/DanielPopoola/wallee-gateway/internal/domain"
	"github.com/DanielPopoola/wallee-gateway/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/wallee-gateway/internal/normalize"
	"github.com/google/uuid"
)

// LinkResult carries the code the operator enters on the device.
type LinkResult struct {
	Terminal       *domain.Terminal
	ActivationCode string
}

// CreateResourceCommand registers a terminal location or configuration.
type CreateResourceCommand struct {
	Kind          domain.ResourceKind
	Name          string
	RemoteID      *int64
	RemoteVersion *int64
	IsDefault     bool
}

type TerminalService struct {
	terminalRepo application.TerminalRepository
	resourceRepo application.ResourceRepository
	client       application.ProcessorClient
	logger       *slog.Logger
	now          func() time.Time
}

func NewTerminalService(
	terminalRepo application.TerminalRepository,
	resourceRepo application.ResourceRepository,
	client application.ProcessorClient,
	logger *slog.Logger,
) *TerminalService {
	return &TerminalService{
		terminalRepo: terminalRepo,
		resourceRepo: resourceRepo,
		client:       client,
		logger:       logger,
		now:          time.Now,
	}
}

// List returns terminals in the given status; an empty status lists all.
func (s *TerminalService) List(ctx context.Context, status domain.TerminalStatus) ([]*domain.Terminal, error) {
	return s.terminalRepo.List(ctx, status)
}

func (s *TerminalService) ListActive(ctx context.Context) ([]*domain.Terminal, error) {
	return s.terminalRepo.List(ctx, domain.TerminalActive)
}

// Sync refreshes one known terminal from the processor.
func (s *TerminalService) Sync(ctx context.Context, id string) (*domain.Terminal, error) {
	t, err := s.terminalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, t)
}

// SyncRemote refreshes the local terminal with the given processor id. It
// does not create unknown terminals.
func (s *TerminalService) SyncRemote(ctx context.Context, remoteID int64) (*domain.Terminal, error) {
	t, err := s.terminalRepo.FindByRemoteID(ctx, remoteID)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, t)
}

func (s *TerminalService) refresh(ctx context.Context, t *domain.Terminal) (*domain.Terminal, error) {
	remote, err := s.client.ReadTerminal(ctx, t.RemoteID)
	if err != nil {
		return nil, fmt.Errorf("read terminal %d: %w", t.RemoteID, err)
	}
	t.Apply(normalize.Terminal(remote), s.now())
	return s.terminalRepo.Upsert(ctx, nil, t)
}

// SyncAll imports every terminal of the space, creating unknown ones.
func (s *TerminalService) SyncAll(ctx context.Context) (int, error) {
	remote, err := s.client.SearchTerminals(ctx)
	if err != nil {
		return 0, fmt.Errorf("search terminals: %w", err)
	}

	synced := 0
	for _, item := range remote {
		snap := normalize.Terminal(item)
		if snap.RemoteID == nil {
			s.logger.Warn("skipping terminal without id")
			continue
		}

		now := s.now()
		t, err := s.terminalRepo.FindByRemoteID(ctx, *snap.RemoteID)
		switch {
		case errors.Is(err, postgres.ErrTerminalNotFound):
			t, err = domain.NewTerminalFromSnapshot(uuid.NewString(), snap, now)
			if err != nil {
				return synced, err
			}
			if t.Name == "" {
				t.Name = t.Identifier
			}
		case err != nil:
			return synced, err
		default:
			t.Apply(snap, now)
		}

		if _, err := s.terminalRepo.Upsert(ctx, nil, t); err != nil {
			return synced, err
		}
		synced++
	}

	s.logger.Info("terminals synced", "count", synced)
	return synced, nil
}

// TriggerBalance asks the device to run its final balance.
func (s *TerminalService) TriggerBalance(ctx context.Context, id string) (normalize.Map, error) {
	t, err := s.terminalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.client.TriggerFinalBalance(ctx, t.RemoteID)
}

// SetDefault makes id the only default terminal.
func (s *TerminalService) SetDefault(ctx context.Context, id string) (*domain.Terminal, error) {
	if err := s.terminalRepo.SetDefault(ctx, id); err != nil {
		return nil, err
	}
	return s.terminalRepo.FindByID(ctx, id)
}

// LinkDevice pairs the terminal with a physical device. The identifier the
// processor reports afterwards is the activation code.
func (s *TerminalService) LinkDevice(ctx context.Context, id, serialNumber string) (*LinkResult, error) {
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, domain.NewMissingRequiredFieldError("serial_number")
	}

	t, err := s.terminalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.client.LinkTerminalDevice(ctx, t.RemoteID, serialNumber); err != nil {
		return nil, fmt.Errorf("link terminal %d: %w", t.RemoteID, err)
	}

	t, err = s.refresh(ctx, t)
	if err != nil {
		return nil, err
	}
	if t.SerialNumber == nil {
		t.SerialNumber = &serialNumber
		if t, err = s.terminalRepo.Upsert(ctx, nil, t); err != nil {
			return nil, err
		}
	}

	return &LinkResult{Terminal: t, ActivationCode: t.Identifier}, nil
}

func (s *TerminalService) UnlinkDevice(ctx context.Context, id string) (*domain.Terminal, error) {
	t, err := s.terminalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.client.UnlinkTerminalDevice(ctx, t.RemoteID); err != nil {
		return nil, fmt.Errorf("unlink terminal %d: %w", t.RemoteID, err)
	}

	t.SerialNumber = nil
	t.UpdatedAt = s.now()
	return s.terminalRepo.Upsert(ctx, nil, t)
}

// DefaultTerminal resolves the terminal used when a payment names none.
func (s *TerminalService) DefaultTerminal(ctx context.Context) (*domain.Terminal, error) {
	t, err := s.terminalRepo.FindDefault(ctx)
	if errors.Is(err, postgres.ErrTerminalNotFound) {
		return nil, domain.NewTerminalUnavailableError("no default terminal configured")
	}
	return t, err
}

func (s *TerminalService) CreateResource(ctx context.Context, cmd CreateResourceCommand) (*domain.TerminalResource, error) {
	if cmd.Kind != domain.ResourceLocation && cmd.Kind != domain.ResourceConfiguration {
		return nil, domain.NewMissingRequiredFieldError("resource kind")
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, domain.NewMissingRequiredFieldError("name")
	}

	now := s.now()
	res := &domain.TerminalResource{
		ID:            uuid.NewString(),
		Kind:          cmd.Kind,
		Name:          strings.TrimSpace(cmd.Name),
		RemoteID:      cmd.RemoteID,
		RemoteVersion: cmd.RemoteVersion,
		IsDefault:     cmd.IsDefault,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.resourceRepo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *TerminalService) SetDefaultResource(ctx context.Context, kind domain.ResourceKind, id string) error {
	return s.resourceRepo.SetDefault(ctx, kind, id)
}

func (s *TerminalService) DefaultResource(ctx context.Context, kind domain.ResourceKind) (*domain.TerminalResource, error) {
	return s.resourceRepo.FindDefault(ctx, kind)
}

func (s *TerminalService) ListResources(ctx context.Context, kind domain.ResourceKind) ([]*domain.TerminalResource, error) {
	return s.resourceRepo.List(ctx, kind)
}
