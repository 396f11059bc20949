package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Club ===================== */

type Club struct {
	ClubID          uuid.UUID `gorm:"column:club_id;type:uuid;primaryKey" json:"club_id"`
	ClubName        string    `gorm:"column:club_name;type:varchar(120);not null" json:"club_name"`
	ClubSlug        string    `gorm:"column:club_slug;type:varchar(120);not null;uniqueIndex" json:"club_slug"`
	ClubDescription *string   `gorm:"column:club_description;type:text" json:"club_description,omitempty"`
	ClubIsActive    bool      `gorm:"column:club_is_active;not null" json:"club_is_active"`

	ClubCreatedAt time.Time      `gorm:"column:club_created_at;autoCreateTime" json:"club_created_at"`
	ClubUpdatedAt time.Time      `gorm:"column:club_updated_at;autoUpdateTime" json:"club_updated_at"`
	ClubDeletedAt gorm.DeletedAt `gorm:"column:club_deleted_at;index" json:"club_deleted_at,omitempty"`
}

func (Club) TableName() string { return "clubs" }

func (c *Club) BeforeCreate(tx *gorm.DB) error {
	if c.ClubID == uuid.Nil {
		c.ClubID = uuid.New()
	}
	return nil
}

/* ===================== Members ===================== */

const (
	ClubMemberRoleMember         = "member"
	ClubMemberRoleSubCoordinator = "sub_coordinator"
	ClubMemberRoleCoordinator    = "coordinator"
)

type ClubMember struct {
	ClubMemberID     uuid.UUID `gorm:"column:club_member_id;type:uuid;primaryKey" json:"club_member_id"`
	ClubMemberClubID uuid.UUID `gorm:"column:club_member_club_id;type:uuid;not null;uniqueIndex:uq_club_member_club_user" json:"club_member_club_id"`
	ClubMemberUserID uuid.UUID `gorm:"column:club_member_user_id;type:uuid;not null;uniqueIndex:uq_club_member_club_user" json:"club_member_user_id"`
	ClubMemberRole   string    `gorm:"column:club_member_role;type:varchar(20);not null" json:"club_member_role"`

	ClubMemberJoinedAt time.Time `gorm:"column:club_member_joined_at;not null" json:"club_member_joined_at"`
}

func (ClubMember) TableName() string { return "club_members" }

func (m *ClubMember) BeforeCreate(tx *gorm.DB) error {
	if m.ClubMemberID == uuid.Nil {
		m.ClubMemberID = uuid.New()
	}
	if m.ClubMemberRole == "" {
		m.ClubMemberRole = ClubMemberRoleMember
	}
	if m.ClubMemberJoinedAt.IsZero() {
		m.ClubMemberJoinedAt = time.Now()
	}
	return nil
}
