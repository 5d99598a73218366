package repository

import (
	"github.com/flexprice/ticketing/internal/domain/catalog"
	"github.com/flexprice/ticketing/internal/domain/subscription"
	"github.com/flexprice/ticketing/internal/domain/ticket"
	"github.com/flexprice/ticketing/internal/logger"
	"github.com/flexprice/ticketing/internal/postgres"
	postgresRepo "github.com/flexprice/ticketing/internal/repository/postgres"
)

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewServiceRepository(db *postgres.DB, logger *logger.Logger) catalog.Repository {
	return postgresRepo.NewServiceRepository(db, logger)
}

func NewTicketRepository(db *postgres.DB, logger *logger.Logger) ticket.Repository {
	return postgresRepo.NewTicketRepository(db, logger)
}
