package catalog

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	courserepo "storefront/internal/repository/course"
	productrepo "storefront/internal/repository/product"
)

// FeaturedLimit caps each half of the home page selection.
const FeaturedLimit = 6

type courseRepo interface {
	List(ctx context.Context, f courserepo.ListFilter) ([]domain.Course, int, error)
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	ListLessons(ctx context.Context, courseID string) ([]domain.Lesson, error)
}

type productRepo interface {
	List(ctx context.Context, f productrepo.ListFilter) ([]domain.Product, int, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service answers read-only catalog queries. Inactive entries are invisible.
type Service struct {
	courses  courseRepo
	products productRepo
	pageSize int
}

func New(courses courseRepo, products productRepo, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &Service{courses: courses, products: products, pageSize: pageSize}
}

type CourseQuery struct {
	Query      string
	Difficulty string
	Page       int
}

type ProductQuery struct {
	Query    string
	Category string
	Page     int
}

// Page is one slice of a paginated listing. Page numbers start at 1.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
}

type Featured struct {
	Courses  []domain.Course  `json:"courses"`
	Products []domain.Product `json:"products"`
}

func (s *Service) ListCourses(ctx context.Context, q CourseQuery) (Page[domain.Course], error) {
	difficulty := domain.Difficulty(strings.ToLower(strings.TrimSpace(q.Difficulty)))
	if difficulty != "" && !difficulty.Valid() {
		return Page[domain.Course]{}, fmt.Errorf("%w: unknown difficulty %q", domain.ErrValidation, q.Difficulty)
	}
	page := normalizePage(q.Page)
	items, total, err := s.courses.List(ctx, courserepo.ListFilter{
		Query:      strings.TrimSpace(q.Query),
		Difficulty: difficulty,
		ActiveOnly: true,
		Limit:      s.pageSize,
		Offset:     (page - 1) * s.pageSize,
	})
	if err != nil {
		return Page[domain.Course]{}, err
	}
	return newPage(items, total, page, s.pageSize), nil
}

// GetCourse returns an active course with its lessons in position order.
func (s *Service) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, domain.ErrNotFound
	}
	lessons, err := s.courses.ListLessons(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Lessons = lessons
	return c, nil
}

func (s *Service) ListProducts(ctx context.Context, q ProductQuery) (Page[domain.Product], error) {
	category := domain.ProductCategory(strings.ToLower(strings.TrimSpace(q.Category)))
	if category != "" && !category.Valid() {
		return Page[domain.Product]{}, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, q.Category)
	}
	page := normalizePage(q.Page)
	items, total, err := s.products.List(ctx, productrepo.ListFilter{
		Query:      strings.TrimSpace(q.Query),
		Category:   category,
		ActiveOnly: true,
		Limit:      s.pageSize,
		Offset:     (page - 1) * s.pageSize,
	})
	if err != nil {
		return Page[domain.Product]{}, err
	}
	return newPage(items, total, page, s.pageSize), nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) Featured(ctx context.Context) (*Featured, error) {
	courses, _, err := s.courses.List(ctx, courserepo.ListFilter{ActiveOnly: true, Limit: FeaturedLimit})
	if err != nil {
		return nil, err
	}
	products, _, err := s.products.List(ctx, productrepo.ListFilter{ActiveOnly: true, Limit: FeaturedLimit})
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &Featured{Courses: courses, Products: products}, nil
}

func normalizePage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

func newPage[T any](items []T, total, page, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: size,
		Pages:    (total + size - 1) / size,
	}
}
