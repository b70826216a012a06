package procurement

import (
	"context"

	"github.com/craftline/backend/internal/domain/procurement"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IndentService handles material indents, the internal requests that
// precede a purchase order
type IndentService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewIndentService creates a new indent service
func NewIndentService(txScope TransactionScope, logger *zap.Logger) *IndentService {
	return &IndentService{
		txScope: txScope,
		logger:  logger,
	}
}

// CreateIndent creates a material indent for the requesting user. Every
// line must name an active raw material. With Submit set the indent goes
// straight into the approval queue.
func (s *IndentService) CreateIndent(ctx context.Context, tenantID, userID uuid.UUID, req CreateIndentRequest) (*IndentResponse, error) {
	indent, err := procurement.NewIndent(tenantID, userID, req.Purpose)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, line := range req.Items {
			item, err := repos.ItemRepo().FindByIDForTenant(ctx, tenantID, line.InventoryItemID)
			if err != nil {
				return err
			}
			if !item.IsActive {
				return shared.NewDomainError("INVALID_INPUT", "Cannot request a deactivated raw material")
			}
			if err := indent.AddItem(item.ID, line.Quantity, line.Note); err != nil {
				return err
			}
		}
		if req.Submit {
			if err := indent.Submit(); err != nil {
				return err
			}
		}
		return repos.IndentRepo().Save(ctx, indent)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Indent created",
		zap.String("indent_number", indent.Number),
		zap.String("status", string(indent.Status)),
		zap.Int("items", len(indent.Items)))

	response := ToIndentResponse(indent)
	return &response, nil
}

// GetIndent returns an indent by ID
func (s *IndentService) GetIndent(ctx context.Context, tenantID, indentID uuid.UUID) (*IndentResponse, error) {
	var indent *procurement.Indent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		indent, err = repos.IndentRepo().FindByIDForTenant(ctx, tenantID, indentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToIndentResponse(indent)
	return &response, nil
}

// ListIndents returns the tenant's indents
func (s *IndentService) ListIndents(ctx context.Context, tenantID uuid.UUID, filter IndentListFilter) ([]IndentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		indents []procurement.Indent
		total   int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		indents, total, err = repos.IndentRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return ToIndentResponses(indents), total, nil
}

// SubmitIndent moves a draft indent into the approval queue
func (s *IndentService) SubmitIndent(ctx context.Context, tenantID, indentID uuid.UUID) (*IndentResponse, error) {
	return s.mutateIndent(ctx, tenantID, indentID, func(i *procurement.Indent) error {
		return i.Submit()
	})
}

// ApproveIndent approves a pending indent
func (s *IndentService) ApproveIndent(ctx context.Context, tenantID, indentID, approverID uuid.UUID) (*IndentResponse, error) {
	resp, err := s.mutateIndent(ctx, tenantID, indentID, func(i *procurement.Indent) error {
		return i.Approve(approverID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Indent approved",
		zap.String("indent_number", resp.Number),
		zap.String("approver_id", approverID.String()))
	return resp, nil
}

// RejectIndent rejects a pending indent with a reason
func (s *IndentService) RejectIndent(ctx context.Context, tenantID, indentID uuid.UUID, req RejectIndentRequest) (*IndentResponse, error) {
	return s.mutateIndent(ctx, tenantID, indentID, func(i *procurement.Indent) error {
		return i.Reject(req.Reason)
	})
}

func (s *IndentService) mutateIndent(ctx context.Context, tenantID, indentID uuid.UUID, mutate func(*procurement.Indent) error) (*IndentResponse, error) {
	var indent *procurement.Indent
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		indent, err = repos.IndentRepo().FindByIDForTenant(ctx, tenantID, indentID)
		if err != nil {
			return err
		}
		if err := mutate(indent); err != nil {
			return err
		}
		return repos.IndentRepo().Save(ctx, indent)
	})
	if err != nil {
		return nil, err
	}
	response := ToIndentResponse(indent)
	return &response, nil
}
