package api

import (
	"strconv"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/gin-gonic/gin"
)

type pageResponse[T any] struct {
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
	PageSize   int `json:"page_size"`
	Results    []T `json:"results"`
}

// pageFrom reads the page and page-size query parameters.
func pageFrom(c *gin.Context) (domain.Page, error) {
	number, err := queryInt(c, "page")
	if err != nil {
		return domain.Page{}, err
	}
	size, err := queryInt(c, "page-size")
	if err != nil {
		return domain.Page{}, err
	}
	return domain.NewPage(number, size), nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation(map[string][]string{name: {msgIntegerRequired}})
	}
	return n, nil
}

func paginate[S, T any](result domain.PageResult[S], convert func(*S) T) pageResponse[T] {
	out := pageResponse[T]{
		TotalCount: result.TotalCount,
		TotalPages: result.TotalPages(),
		PageSize:   result.PageSize,
		Results:    make([]T, 0, len(result.Items)),
	}
	for i := range result.Items {
		out.Results = append(out.Results, convert(&result.Items[i]))
	}
	return out
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.NotFound()
	}
	return id, nil
}
