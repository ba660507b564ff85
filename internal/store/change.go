package store

import (
	"github.com/google/uuid"
)

// ChangeKind says what happened to a document.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change announces a write. It carries no document body: subscribers reload.
type Change struct {
	Topic string     `json:"topic"`
	Kind  ChangeKind `json:"kind"`
	ID    uuid.UUID  `json:"id"`
}

// TopicProjects receives every project write; membership-filtered lists listen here.
const TopicProjects = "projects"

// ProjectTopic is the topic of a single project document.
func ProjectTopic(projectID uuid.UUID) string {
	return "project:" + projectID.String()
}

// TasksTopic is the topic of a project's task collection.
func TasksTopic(projectID uuid.UUID) string {
	return "tasks:" + projectID.String()
}

// ProjectChanges returns the changes to publish for a write to project id.
func ProjectChanges(kind ChangeKind, id uuid.UUID) []Change {
	return []Change{
		{Topic: TopicProjects, Kind: kind, ID: id},
		{Topic: ProjectTopic(id), Kind: kind, ID: id},
	}
}
