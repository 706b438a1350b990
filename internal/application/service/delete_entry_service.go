package service

import (
	"atlaskv/internal/platform/repository"
)

// DeleteEntryService handles the delete side of a key command.
type DeleteEntryService struct {
	repository *repository.EngineRepository
}

func NewDeleteEntryService(repository *repository.EngineRepository) *DeleteEntryService {
	return &DeleteEntryService{repository: repository}
}

type DeleteEntryCommand struct {
	Key []byte
}

type DeleteEntryResult struct {
	Key []byte
	Err error
}

func (s *DeleteEntryService) Execute(command DeleteEntryCommand) DeleteEntryResult {
	if err := s.repository.Delete(command.Key); err != nil {
		return DeleteEntryResult{Err: err}
	}
	return DeleteEntryResult{Key: command.Key}
}
