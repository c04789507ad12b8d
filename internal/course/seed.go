package course

// DefaultCourses is the built-in timetable used by `course-hub init`.
func DefaultCourses() []Course {
	return []Course{
		{Name: "人工智能", StartTime: "09:50", EndTime: "11:25", Location: "2号教学楼318", TeacherID: "W", WeekList: FullTerm, Weekday: Monday},
		{Name: "英语", StartTime: "08:00", EndTime: "09:35", Location: "1号教学楼524", TeacherID: "G", WeekList: "2,5,7,9", Weekday: Wednesday},
		{Name: "数电", StartTime: "09:50", EndTime: "11:25", Location: "1号教学楼413", TeacherID: "K", WeekList: "1,3,5,7,9,11,13,15,17", Weekday: Thursday},
		{Name: "概率", StartTime: "09:50", EndTime: "12:15", Location: "2号教学楼216", TeacherID: "M", WeekList: FullTerm, Weekday: Friday},
		{Name: "数据结构", StartTime: "08:00", EndTime: "09:35", Location: "2号教学楼316", TeacherID: "L", WeekList: "1,3,5,7,9,11,13,15,17", Weekday: Monday},
		{Name: "形策", StartTime: "15:50", EndTime: "17:25", Location: "1号教学楼314", TeacherID: "W", WeekList: FullTerm, Weekday: Thursday},
		{Name: "大物", StartTime: "15:50", EndTime: "18:15", Location: "2号教学楼316", TeacherID: "Z", WeekList: "2,4,6,8,10,12,14,16", Weekday: Tuesday},
	}
}
