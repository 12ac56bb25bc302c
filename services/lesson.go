package services

import (
	"errors"

	"codequest/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LessonService struct {
	DB *gorm.DB
}

func NewLessonService(db *gorm.DB) *LessonService {
	return &LessonService{DB: db}
}

// GetLesson handles GET /lessons/:topic. An unknown topic gets the
// under-construction placeholder instead of a 404.
func (s *LessonService) GetLesson(c *fiber.Ctx) error {
	topic := c.Params("topic")

	var lesson models.Lesson
	err := s.DB.Where("topic = ?", topic).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{
			"topic": topic,
			"theme": c.Locals("theme"),
			"lesson": fiber.Map{
				"title":   "Topic Not Found",
				"content": []string{"This lesson is under construction!"},
			},
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load lesson",
		})
	}

	return c.JSON(fiber.Map{
		"topic": topic,
		"theme": c.Locals("theme"),
		"lesson": fiber.Map{
			"title":   lesson.Title,
			"content": lesson.GetContent(),
		},
	})
}
