package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Kind is the catalog table a CSV file feeds.
type Kind string

const (
	KindCourse  Kind = "course"
	KindProduct Kind = "product"
)

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type CourseWriter interface {
	Upsert(ctx context.Context, c domain.Course) (*domain.Course, error)
	UpsertLesson(ctx context.Context, l domain.Lesson) (*domain.Lesson, error)
}

// Result summarises one import run.
type Result struct {
	Kind     Kind
	Imported int
	Lessons  int
}

// CSVImporter loads catalog rows and upserts them by key. Course files may
// carry lesson continuation rows: a row with an empty key and a lesson.title
// belongs to the course above it.
type CSVImporter struct {
	reader   *csv.Reader
	courses  CourseWriter
	products ProductWriter
	logger   *zap.Logger
}

func NewCSVImporter(r io.Reader, courses CourseWriter, products ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:   csvr,
		courses:  courses,
		products: products,
		logger:   logger,
	}
}

// DetectKind picks the catalog table from the header row.
func DetectKind(headers []string) (Kind, error) {
	idx := headerIndex(headers)
	_, hasTitle := idx["title"]
	_, hasDifficulty := idx["difficulty"]
	_, hasName := idx["name"]
	_, hasCategory := idx["category"]
	_, hasKey := idx["key"]
	switch {
	case !hasKey:
		return "", errors.New("missing key column")
	case hasTitle && hasDifficulty:
		return KindCourse, nil
	case hasName && hasCategory:
		return KindProduct, nil
	default:
		return "", errors.New("headers match neither the course nor the product layout")
	}
}

type courseRow struct {
	course  domain.Course
	lessons []domain.Lesson
}

// Run parses the file and upserts every row.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read headers: %w", err)
	}
	kind, err := DetectKind(headers)
	if err != nil {
		return Result{}, fmt.Errorf("detect kind: %w", err)
	}
	index := headerIndex(headers)
	if kind == KindProduct {
		return i.runProducts(ctx, index)
	}
	return i.runCourses(ctx, index)
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (Result, error) {
	res := Result{Kind: KindProduct}
	if i.products == nil {
		return res, errors.New("no product writer configured")
	}
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line++
		if pick(record, index, "key") == "" {
			continue
		}
		p, err := parseProduct(record, index)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := i.products.Upsert(ctx, p); err != nil {
			return res, fmt.Errorf("upsert product %q: %w", p.Key, err)
		}
		res.Imported++
	}
}

func (i *CSVImporter) runCourses(ctx context.Context, index map[string]int) (Result, error) {
	res := Result{Kind: KindCourse}
	if i.courses == nil {
		return res, errors.New("no course writer configured")
	}

	var current *courseRow
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line++

		if pick(record, index, "key") != "" {
			if current != nil {
				if err := i.saveCourse(ctx, current, &res); err != nil {
					return res, err
				}
			}
			c, err := parseCourse(record, index)
			if err != nil {
				return res, fmt.Errorf("line %d: %w", line, err)
			}
			current = &courseRow{course: c}
			if l, ok := parseLesson(record, index); ok {
				current.lessons = append(current.lessons, l)
			}
			continue
		}

		l, ok := parseLesson(record, index)
		if !ok {
			continue
		}
		if current == nil {
			return res, fmt.Errorf("line %d: lesson row before any course", line)
		}
		current.lessons = append(current.lessons, l)
	}

	if current != nil {
		if err := i.saveCourse(ctx, current, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (i *CSVImporter) saveCourse(ctx context.Context, row *courseRow, res *Result) error {
	saved, err := i.courses.Upsert(ctx, row.course)
	if err != nil {
		return fmt.Errorf("upsert course %q: %w", row.course.Key, err)
	}
	res.Imported++
	for pos, l := range row.lessons {
		l.CourseID = saved.ID
		if l.Position == 0 {
			l.Position = pos + 1
		}
		if _, err := i.courses.UpsertLesson(ctx, l); err != nil {
			return fmt.Errorf("upsert lesson %d of %q: %w", l.Position, row.course.Key, err)
		}
		res.Lessons++
	}
	i.logger.Debug("importer: course saved", zap.String("key", row.course.Key), zap.Int("lessons", len(row.lessons)))
	return nil
}

func parseProduct(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		Key:         pick(record, index, "key"),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		Category:    domain.ProductCategory(strings.ToLower(pick(record, index, "category"))),
		ImageURL:    pick(record, index, "image_url"),
	}
	if p.Name == "" {
		return p, fmt.Errorf("product %q: name is required", p.Key)
	}
	price, err := parsePrice(pick(record, index, "price"))
	if err != nil {
		return p, fmt.Errorf("product %q: %w", p.Key, err)
	}
	p.Price = price
	if p.StockQuantity, err = parseInt(pick(record, index, "stock_quantity")); err != nil {
		return p, fmt.Errorf("product %q: stock_quantity: %w", p.Key, err)
	}
	if p.Active, err = parseActive(pick(record, index, "active")); err != nil {
		return p, fmt.Errorf("product %q: %w", p.Key, err)
	}
	return p, nil
}

func parseCourse(record []string, index map[string]int) (domain.Course, error) {
	c := domain.Course{
		Key:         pick(record, index, "key"),
		Title:       pick(record, index, "title"),
		Description: pick(record, index, "description"),
		Instructor:  pick(record, index, "instructor"),
		Difficulty:  domain.Difficulty(strings.ToLower(pick(record, index, "difficulty"))),
		ImageURL:    pick(record, index, "image_url"),
	}
	if c.Title == "" {
		return c, fmt.Errorf("course %q: title is required", c.Key)
	}
	price, err := parsePrice(pick(record, index, "price"))
	if err != nil {
		return c, fmt.Errorf("course %q: %w", c.Key, err)
	}
	c.Price = price
	if c.DurationHours, err = parseInt(pick(record, index, "duration_hours")); err != nil {
		return c, fmt.Errorf("course %q: duration_hours: %w", c.Key, err)
	}
	if c.Active, err = parseActive(pick(record, index, "active")); err != nil {
		return c, fmt.Errorf("course %q: %w", c.Key, err)
	}
	return c, nil
}

func parseLesson(record []string, index map[string]int) (domain.Lesson, bool) {
	title := pick(record, index, "lesson.title")
	if title == "" {
		return domain.Lesson{}, false
	}
	pos, _ := parseInt(pick(record, index, "lesson.position"))
	return domain.Lesson{
		Title:       title,
		Description: pick(record, index, "lesson.description"),
		VideoURL:    pick(record, index, "lesson.video_url"),
		PDFURL:      pick(record, index, "lesson.pdf_url"),
		Position:    pos,
	}, true
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, errors.New("price is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %q", raw)
	}
	return d.Round(2), nil
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative number %q", raw)
	}
	return n, nil
}

// parseActive defaults to true when the column is absent or blank.
func parseActive(raw string) (bool, error) {
	if raw == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false, fmt.Errorf("invalid active flag %q", raw)
	}
	return b, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
