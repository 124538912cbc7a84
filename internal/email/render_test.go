package email

import "testing"

func TestRender(t *testing.T) {
	tmpl := Template{
		Subject: "Hi {{name}}",
		HTML:    "<p>Hello {{name}}, see {{url}}{{missing}}</p>",
		Text:    "Hello {{name}}, see {{url}}",
	}

	tests := []struct {
		name     string
		vars     Vars
		wantSubj string
		wantHTML string
		wantText string
	}{
		{
			name:     "plain values",
			vars:     Vars{"name": "Ana", "url": "https://chefliferadio.com"},
			wantSubj: "Hi Ana",
			wantHTML: "<p>Hello Ana, see https://chefliferadio.com</p>",
			wantText: "Hello Ana, see https://chefliferadio.com",
		},
		{
			name:     "markup is escaped in the html body only",
			vars:     Vars{"name": `<script>alert("x")</script>`},
			wantSubj: `Hi <script>alert("x")</script>`,
			wantHTML: "<p>Hello &lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;, see </p>",
			wantText: `Hello <script>alert("x")</script>, see `,
		},
		{
			name:     "missing variables render blank",
			vars:     Vars{},
			wantSubj: "Hi ",
			wantHTML: "<p>Hello , see </p>",
			wantText: "Hello , see ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tmpl, tt.vars)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got.Subject != tt.wantSubj {
				t.Errorf("Subject = %q, want %q", got.Subject, tt.wantSubj)
			}
			if got.HTML != tt.wantHTML {
				t.Errorf("HTML = %q, want %q", got.HTML, tt.wantHTML)
			}
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}

func TestRenderRejectsInvalidKeys(t *testing.T) {
	for _, key := range []string{"Name", "first name", "a-b", ""} {
		if _, err := Render(Template{HTML: "x"}, Vars{key: "v"}); err == nil {
			t.Errorf("Render() with key %q should fail", key)
		}
	}
}

func TestRenderLeavesForeignBracesAlone(t *testing.T) {
	got, err := Render(Template{Text: "{{ name }} {{Name}} {name}"}, Vars{"name": "x"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got.Text != "{{ name }} {{Name}} {name}" {
		t.Errorf("Text = %q", got.Text)
	}
}
