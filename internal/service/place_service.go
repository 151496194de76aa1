package service

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/pkg/nominatim"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// PlaceSearcher 地点查询的外部来源
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]nominatim.Place, error)
}

type PlaceService interface {
	Suggest(ctx context.Context, caller *Caller, query string) (*dto.PlaceSuggestionsDTO, error)
}

type placeServiceImpl struct {
	searcher  PlaceSearcher
	debouncer *Debouncer
	minLength int
}

func NewPlaceService(searcher PlaceSearcher, debouncer *Debouncer, minLength int) PlaceService {
	return &placeServiceImpl{
		searcher:  searcher,
		debouncer: debouncer,
		minLength: minLength,
	}
}

// Suggest 同一调用者只有最新一次查询会得到结果；外部服务失败时返回空列表
func (s *placeServiceImpl) Suggest(ctx context.Context, caller *Caller, query string) (*dto.PlaceSuggestionsDTO, error) {
	if !IsAuthenticated(caller) {
		return nil, ErrUnauthorized
	}

	query = strings.TrimSpace(query)
	result := &dto.PlaceSuggestionsDTO{Query: query, Places: []*dto.PlaceDTO{}}
	if utf8.RuneCountInString(query) < s.minLength {
		return result, nil
	}

	var places []nominatim.Place
	err := s.debouncer.Do(ctx, callerKey(caller), func(runCtx context.Context) error {
		var err error
		places, err = s.searcher.Search(runCtx, query)
		return err
	})
	switch {
	case errors.Is(err, ErrLookupSuperseded):
		result.Superseded = true
		return result, nil
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WarnContext(ctx, "place lookup failed", "query", query, "err", err)
		return result, nil
	}

	seen := make(map[string]struct{}, len(places))
	for _, p := range places {
		if p.DisplayName == "" {
			continue
		}
		if _, ok := seen[p.DisplayName]; ok {
			continue
		}
		seen[p.DisplayName] = struct{}{}
		result.Places = append(result.Places, &dto.PlaceDTO{DisplayName: p.DisplayName, Lat: p.Lat, Lon: p.Lon})
	}
	return result, nil
}

func callerKey(caller *Caller) string {
	return "user:" + strconv.FormatUint(caller.UserID, 10)
}
