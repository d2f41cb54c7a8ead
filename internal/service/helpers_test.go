package service

import (
	domainauth "github.com/classboard/classboard/internal/domain/auth"
)

func strPtr(s string) *string { return &s }

func adminSession() domainauth.Session {
	return domainauth.Session{UserID: "admin-1", Username: "root", Name: "Admin", Role: domainauth.RoleAdmin}
}

func teacherSession() domainauth.Session {
	return domainauth.Session{UserID: "teacher-1", Username: "tgray", Name: "T. Gray", Role: domainauth.RoleTeacher}
}

func studentSession() domainauth.Session {
	return domainauth.Session{UserID: "student-1", Username: "skim", Name: "S. Kim", Role: domainauth.RoleStudent}
}
