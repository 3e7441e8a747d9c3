package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/salespoint/pos-backend/internal/payment"
)

const (
	productCachePrefix   = "dir:product:"
	paymentTypesCacheKey = "dir:payment-types"
)

// Service answers register lookups, caching the hot single-product and
// payment-type reads in Redis.
type Service struct {
	Store Store
	Cache *Cache
	Log   zerolog.Logger

	DefaultPerPage int
	MaxPerPage     int
}

// PerPage bounds the requested page size to the configured limits.
func (s *Service) PerPage(requested int) int {
	perPage := requested
	if perPage <= 0 {
		perPage = s.DefaultPerPage
	}
	if perPage <= 0 {
		perPage = 20
	}
	if s.MaxPerPage > 0 && perPage > s.MaxPerPage {
		perPage = s.MaxPerPage
	}
	return perPage
}

// Products lists active products matching the query.
func (s *Service) Products(ctx context.Context, p ListParams) ([]Product, int, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("directory service not configured")
	}
	p.PerPage = s.PerPage(p.PerPage)
	return s.Store.ListProducts(ctx, p)
}

// Product fetches one product, serving repeat scans from cache.
func (s *Service) Product(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Store == nil {
		return Product{}, errors.New("directory service not configured")
	}
	key := productCachePrefix + id.String()
	var cached Product
	if hit, err := s.Cache.GetJSON(ctx, key, &cached); err != nil {
		s.Log.Debug().Err(err).Msg("product cache read failed")
	} else if hit {
		return cached, nil
	}
	product, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.Cache.SetJSON(ctx, key, product); err != nil {
		s.Log.Debug().Err(err).Msg("product cache write failed")
	}
	return product, nil
}

// Customers lists active customers matching the query.
func (s *Service) Customers(ctx context.Context, p ListParams) ([]Customer, int, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("directory service not configured")
	}
	p.PerPage = s.PerPage(p.PerPage)
	return s.Store.ListCustomers(ctx, p)
}

// Agents lists active sales agents matching the query.
func (s *Service) Agents(ctx context.Context, p ListParams) ([]SalesAgent, int, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("directory service not configured")
	}
	p.PerPage = s.PerPage(p.PerPage)
	return s.Store.ListAgents(ctx, p)
}

// PaymentTypes returns the methods offered at the register together with
// the pre-selected default.
func (s *Service) PaymentTypes(ctx context.Context) ([]payment.Method, *payment.Method, error) {
	if s == nil || s.Store == nil {
		return nil, nil, errors.New("directory service not configured")
	}
	var all []payment.Method
	if hit, err := s.Cache.GetJSON(ctx, paymentTypesCacheKey, &all); err != nil {
		s.Log.Debug().Err(err).Msg("payment types cache read failed")
	} else if !hit {
		loaded, err := s.Store.ListPaymentTypes(ctx)
		if err != nil {
			return nil, nil, err
		}
		all = loaded
		if err := s.Cache.SetJSON(ctx, paymentTypesCacheKey, all); err != nil {
			s.Log.Debug().Err(err).Msg("payment types cache write failed")
		}
	}
	eligible := payment.Eligible(all)
	if def, ok := payment.SelectDefault(all); ok {
		return eligible, &def, nil
	}
	return eligible, nil, nil
}
