package commands

import (
	"context"
	"log/slog"

	"bookstore-choreography/internal/domain/book"
	"bookstore-choreography/internal/domain/event"
	"bookstore-choreography/internal/infra"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

var ErrBookNotFound = errs.New("book not found")

const (
	defaultBookTitle = "Microservices in .NET"
	defaultBookPrice = "49.99"
)

type BookInput struct {
	Title string
	Price decimal.Decimal
}

type BookCommands interface {
	CreateBook(ctx context.Context, in BookInput) (*book.Book, error)
	// UpdateBook announces the stored price on book-price-events after commit.
	UpdateBook(ctx context.Context, id int64, in BookInput) (*book.Book, error)
	SeedDefaults(ctx context.Context) error
}

type bookUseCaseImpl struct {
	uow       shared.UnitOfWork
	publisher shared.EventPublisher
	logger    *slog.Logger
}

func NewBookUseCase(uow shared.UnitOfWork, publisher shared.EventPublisher, logger *slog.Logger) BookCommands {
	return &bookUseCaseImpl{
		uow:       uow,
		publisher: publisher,
		logger:    logger.With("component", "book-commands"),
	}
}

func (uc *bookUseCaseImpl) CreateBook(ctx context.Context, in BookInput) (*book.Book, error) {
	b, err := book.NewBook(in.Title, in.Price)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, derr := tx.Books().Create(ctx, b)
		if derr != nil {
			return derr
		}
		b = book.ReconstructBook(id, b.Title(), b.Price())
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("book created", "book_id", b.ID(), "price", b.Price().String())
	return b, nil
}

func (uc *bookUseCaseImpl) UpdateBook(ctx context.Context, id int64, in BookInput) (*book.Book, error) {
	var updated *book.Book
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, derr := tx.Books().FindByID(ctx, id)
		if derr != nil {
			if infra.IsNotFound(derr) {
				return errs.Mark(errs.Wrapf(ErrBookNotFound, "book %d", id), errs.ErrNotFound)
			}
			return derr
		}
		if derr = b.Revise(in.Title, in.Price); derr != nil {
			return derr
		}
		if derr = tx.Books().Update(ctx, b); derr != nil {
			return derr
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := event.BookPriceUpdated{BookID: updated.ID(), NewPrice: updated.Price()}
	if err := uc.publisher.Publish(ctx, event.ChannelBookPriceEvents, msg); err != nil {
		uc.logger.Error("book updated but price event not published", "book_id", id, "error", err.Error())
		return nil, err
	}
	uc.logger.Info("published BookPriceUpdated", "book_id", id, "new_price", updated.Price().String())
	return updated, nil
}

func (uc *bookUseCaseImpl) SeedDefaults(ctx context.Context) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Books().Count(ctx)
		if err != nil || n > 0 {
			return err
		}
		b, err := book.NewBook(defaultBookTitle, decimal.RequireFromString(defaultBookPrice))
		if err != nil {
			return err
		}
		id, err := tx.Books().Create(ctx, b)
		if err != nil {
			return err
		}
		uc.logger.Info("seeded catalog", "book_id", id, "title", defaultBookTitle)
		return nil
	})
}
