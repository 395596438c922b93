package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

type stubCourseRepo struct {
	items   []domain.Course
	lessons []domain.Lesson
	failKey string
}

func (s *stubCourseRepo) Upsert(_ context.Context, c domain.Course) (*domain.Course, error) {
	if c.Key == s.failKey {
		return nil, errors.New("boom")
	}
	c.ID = fmt.Sprintf("course-%d", len(s.items)+1)
	s.items = append(s.items, c)
	return &c, nil
}

func (s *stubCourseRepo) UpsertLesson(_ context.Context, l domain.Lesson) (*domain.Lesson, error) {
	s.lessons = append(s.lessons, l)
	return &l, nil
}

func TestCSVImporter_RunProducts(t *testing.T) {
	csvData := `key,name,description,price,category,stock_quantity,image_url,active
dht22,DHT22 sensor,Temperature and humidity,7.5,Sensors,12,https://example.com/dht22.jpg,
esp32,ESP32 DevKit,Wi-Fi board,12.99,boards,0,,false
,,,,,,,
`
	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), nil, repo, nil)

	res, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Kind != KindProduct || res.Imported != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	first := repo.items[0]
	if first.Key != "dht22" || first.Category != domain.CategorySensors || first.StockQuantity != 12 || !first.Active {
		t.Fatalf("unexpected first product %+v", first)
	}
	if first.Price.StringFixed(2) != "7.50" {
		t.Fatalf("expected price 7.50, got %s", first.Price)
	}
	if repo.items[1].Active {
		t.Fatalf("expected esp32 to be inactive")
	}
}

func TestCSVImporter_RunCoursesWithLessons(t *testing.T) {
	csvData := `key,title,description,price,instructor,duration_hours,difficulty,lesson.title,lesson.video_url
iot-101,IoT Basics,Start here,49.99,Mari Tamm,6,Beginner,Welcome,https://example.com/v1
,,,,,,,Wiring sensors,https://example.com/v2
mqtt,MQTT in practice,,29,Jaan Kask,3,intermediate,,
`
	repo := &stubCourseRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, nil, nil)

	res, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Kind != KindCourse || res.Imported != 2 || res.Lessons != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if repo.items[0].Difficulty != domain.DifficultyBeginner || repo.items[0].DurationHours != 6 {
		t.Fatalf("unexpected first course %+v", repo.items[0])
	}
	if repo.lessons[0].CourseID != "course-1" || repo.lessons[1].CourseID != "course-1" {
		t.Fatalf("lessons should belong to the first course: %+v", repo.lessons)
	}
	if repo.lessons[0].Position != 1 || repo.lessons[1].Position != 2 || repo.lessons[1].Title != "Wiring sensors" {
		t.Fatalf("unexpected lesson order %+v", repo.lessons)
	}
}

func TestCSVImporter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"bad price", "key,name,price,category\nx,X,abc,kits\n", "invalid price"},
		{"negative stock", "key,name,price,category,stock_quantity\nx,X,1,kits,-1\n", "negative number"},
		{"orphan lesson", "key,title,price,difficulty,lesson.title\n,,,,Intro\n", "lesson row before any course"},
		{"unknown layout", "key,foo\nx,y\n", "neither"},
		{"upsert failure", "key,title,price,difficulty\nbroken,T,1,advanced\n", "upsert course"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(tc.csv), &stubCourseRepo{failKey: "broken"}, &stubProductRepo{}, nil)
			_, err := imp.Run(context.Background())
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDetectKind(t *testing.T) {
	kind, err := DetectKind([]string{"key", "Name", "category", "price"})
	if err != nil || kind != KindProduct {
		t.Fatalf("expected product kind, got %s (%v)", kind, err)
	}
	kind, err = DetectKind([]string{"key", "title", "difficulty"})
	if err != nil || kind != KindCourse {
		t.Fatalf("expected course kind, got %s (%v)", kind, err)
	}
	if _, err := DetectKind([]string{"title", "difficulty"}); err == nil {
		t.Fatalf("expected error without key column")
	}
}
