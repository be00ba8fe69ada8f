package forms

func intPtr(n int) *int { return &n }

// Login returns the sign-in form served on the login page.
func Login() Form {
	return Form{
		ID:     "login-form",
		Action: "/login",
		Method: "POST",
		Fields: []Field{
			{
				Name:        "email",
				Type:        FieldTypeEmail,
				Label:       "Email",
				Placeholder: "you@example.com",
				Required:    true,
			},
			{
				Name:     "password",
				Type:     FieldTypePassword,
				Label:    "Password",
				Required: true,
			},
		},
	}
}

// Registration returns the account-creation form served on the register page.
func Registration() Form {
	return Form{
		ID:     "register-form",
		Action: "/register",
		Method: "POST",
		Fields: []Field{
			{
				Name:        "username",
				Type:        FieldTypeText,
				Label:       "Username",
				Placeholder: "Pick a display name",
				Title:       "Username can only contain letters, numbers and underscores",
				Required:    true,
				MinLength:   intPtr(3),
				MaxLength:   intPtr(20),
				Pattern:     `^[a-zA-Z0-9_]+$`,
			},
			{
				Name:        "email",
				Type:        FieldTypeEmail,
				Label:       "Email",
				Placeholder: "you@example.com",
				Required:    true,
			},
			{
				Name:      "password",
				Type:      FieldTypePassword,
				Label:     "Password",
				Required:  true,
				MinLength: intPtr(8),
			},
			{
				Name:     "confirm_password",
				Type:     FieldTypePassword,
				Label:    "Confirm password",
				Required: true,
			},
		},
	}
}
