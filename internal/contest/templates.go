package contest

// Language is a submission language the judge supports. The set is
// fixed: extending it needs both a template here and judge-side support.
type Language string

const (
	LangJava   Language = "java"
	LangPython Language = "python"
	LangCpp    Language = "cpp"
)

func (l Language) Valid() bool {
	_, ok := templates[l]
	return ok
}

// Template returns the canonical editor seed for the language.
func (l Language) Template() string {
	return templates[l]
}

// Languages lists the supported languages in display order.
func Languages() []Language {
	return []Language{LangJava, LangPython, LangCpp}
}

var templates = map[Language]string{
	LangJava: `public class Solution {
    public static void main(String[] args) {
        // Your code here
        System.out.println("Hello World");
    }
}`,
	LangPython: `# Your code here
print("Hello World")`,
	LangCpp: `#include <iostream>
using namespace std;

int main() {
    // Your code here
    cout << "Hello World" << endl;
    return 0;
}`,
}
