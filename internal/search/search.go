package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/repo"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/service"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/util"
)

// Service answers product search queries from Elasticsearch, falling back
// to a SQL LIKE scan when no ES client is wired.
type Service struct {
	ES    *elasticsearch.Client
	Index string
	Repo  repo.GormRepo
}

func (s *Service) Search(ctx context.Context, query string, page, size int) (int64, []service.ProductView, error) {
	if page < 1 {
		page = 1
	}
	from, limit := util.Calculate(page, size)

	if s.ES == nil {
		return s.searchSQL(ctx, query, from, limit)
	}
	return s.searchES(ctx, query, from, limit)
}

func (s *Service) searchSQL(ctx context.Context, query string, from, limit int) (int64, []service.ProductView, error) {
	total, items, err := s.Repo.ListProductsPage(ctx, repo.ProductFilter{Search: query}, from, limit)
	if err != nil {
		return 0, nil, err
	}
	views := make([]service.ProductView, 0, len(items))
	for i := range items {
		views = append(views, service.ProductPayload(&items[i]))
	}
	return total, views, nil
}

func (s *Service) searchES(ctx context.Context, query string, from, limit int) (int64, []service.ProductView, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"nome^2", "descricao"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source service.ProductView `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	views := make([]service.ProductView, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		views = append(views, hit.Source)
	}
	return r.Hits.Total.Value, views, nil
}

// IndexProduct upserts the product document. No-op without a client.
func (s *Service) IndexProduct(ctx context.Context, p service.ProductView) error {
	if s.ES == nil {
		return nil
	}

	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}

	res, err := s.ES.Index(
		s.Index,
		strings.NewReader(string(doc)),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}

// RemoveProduct drops the product document. No-op without a client.
func (s *Service) RemoveProduct(ctx context.Context, id uint) error {
	if s.ES == nil {
		return nil
	}

	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("remove product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove product: %s", res.Status())
	}
	return nil
}
