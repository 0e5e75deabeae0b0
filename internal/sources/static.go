package sources

import "context"

// StaticEntity pairs an entity with its field samples for inline scans.
type StaticEntity struct {
	Entity Entity  `json:"entity"`
	Fields []Field `json:"fields"`
}

// Static is an in-memory source. It backs inline scan requests and tests.
type Static struct {
	SourceName string
	Items      []StaticEntity
}

// NewStatic creates a Static source from inline entities.
func NewStatic(name string, items []StaticEntity) *Static {
	if name == "" {
		name = "inline"
	}
	return &Static{SourceName: name, Items: items}
}

func (s *Static) Name() string {
	return s.SourceName
}

func (s *Static) Entities(ctx context.Context) ([]Entity, error) {
	entities := make([]Entity, 0, len(s.Items))
	for _, item := range s.Items {
		entities = append(entities, item.Entity)
	}
	return entities, nil
}

func (s *Static) SampleFields(ctx context.Context, entity Entity, limit int) ([]Field, error) {
	for _, item := range s.Items {
		if item.Entity.Locator != entity.Locator {
			continue
		}

		fields := make([]Field, 0, len(item.Fields))
		for _, f := range item.Fields {
			samples := f.Samples
			if limit > 0 && len(samples) > limit {
				samples = samples[:limit]
			}
			fields = append(fields, Field{Name: f.Name, Samples: samples})
		}
		return fields, nil
	}

	return nil, nil
}
