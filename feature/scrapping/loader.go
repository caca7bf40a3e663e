package scrapping

import "github.com/gofiber/fiber/v2"

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the scrapping feature around svc.
func NewFeature(svc *Service) *Feature {
	return &Feature{service: svc, handler: NewHandler(svc)}
}

func (f *Feature) Name() string {
	return "scrapping"
}

func (f *Feature) IsEnabled() bool {
	return f.service != nil && f.service.Resolver != nil && f.service.Collector != nil
}

func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
