package domain

// UserProfile holds the candidate fields used to write first-person materials.
// List fields come straight from storage and may contain null entries.
type UserProfile struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	Headline       string    `json:"headline"`
	Location       string    `json:"location"`
	SeniorityLevel string    `json:"seniority_level"`
	WorkPermitInfo string    `json:"work_permit_info"`
	PrimaryEmail   string    `json:"primary_email"`
	PrimaryPhone   string    `json:"primary_phone"`
	Goals          []*string `json:"goals"`
	Aspirations    []*string `json:"aspirations"`
	PersonalValues []*string `json:"personal_values"`
	Strengths      []*string `json:"strengths"`
	Interests      []*string `json:"interests"`
	Skills         []*string `json:"skills"`
	Certifications []*string `json:"certifications"`
	Languages      []*string `json:"languages"`
	SocialLinks    []*string `json:"social_links"`
}

// PersonalCanvas is the candidate's business-model-style self description.
type PersonalCanvas struct {
	ID                    string    `json:"id"`
	CustomerSegments      []*string `json:"customer_segments"`
	ValueProposition      []*string `json:"value_proposition"`
	Channels              []*string `json:"channels"`
	CustomerRelationships []*string `json:"customer_relationships"`
	KeyActivities         []*string `json:"key_activities"`
	KeyResources          []*string `json:"key_resources"`
	KeyPartners           []*string `json:"key_partners"`
	CostStructure         []*string `json:"cost_structure"`
	RevenueStreams        []*string `json:"revenue_streams"`
}

type Experience struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	CompanyName      string    `json:"company_name"`
	ExperienceType   string    `json:"experience_type"`
	StartDate        string    `json:"start_date"`
	EndDate          string    `json:"end_date"`
	Responsibilities []*string `json:"responsibilities"`
	Tasks            []*string `json:"tasks"`
}

// STARStory is a Situation/Task/Action/Result narrative attached to an experience.
type STARStory struct {
	ID             string    `json:"id"`
	ExperienceID   string    `json:"experience_id"`
	Title          string    `json:"title"`
	Situation      string    `json:"situation"`
	Task           string    `json:"task"`
	Action         string    `json:"action"`
	Result         string    `json:"result"`
	Achievements   []*string `json:"achievements"`
	KpiSuggestions []*string `json:"kpi_suggestions"`
}

// TailoringProfile is everything the profile reader returns for one user.
type TailoringProfile struct {
	Profile        UserProfile     `json:"profile"`
	PersonalCanvas *PersonalCanvas `json:"personal_canvas,omitempty"`
	Experiences    []Experience    `json:"experiences"`
	Stories        []STARStory     `json:"stories"`
}
